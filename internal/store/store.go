// Package store provides the local cache store interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/kandang/internal/model"
)

var (
	// ErrStorageUnavailable means the local database could not be opened or queried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned by GetOne for an id that is not cached.
	ErrNotFound = errors.New("record not found")
)

// Store defines the durable per-collection cache.
type Store interface {
	// Init opens the database and creates tables. Safe to call repeatedly.
	Init(ctx context.Context) error

	// GetAll returns every cached record of a collection, in fetch order.
	// It does not consult freshness.
	GetAll(ctx context.Context, c model.Collection) ([]model.Record, error)

	// GetOne returns a single cached record.
	GetOne(ctx context.Context, c model.Collection, id string) (model.Record, error)

	// ReplaceAll atomically swaps the collection contents and marks it fetched now.
	ReplaceAll(ctx context.Context, c model.Collection, records []model.Record) error

	// UpsertOne writes one record without touching the fetch time.
	UpsertOne(ctx context.Context, c model.Collection, r model.Record) error

	// DeleteOne removes one record if present, without touching the fetch time.
	DeleteOne(ctx context.Context, c model.Collection, id string) error

	// GetMetadata returns nil when the collection has no metadata entry.
	GetMetadata(ctx context.Context, c model.Collection) (*model.Metadata, error)

	// Invalidate clears the fetch time, leaving records as a stale fallback.
	Invalidate(ctx context.Context, c model.Collection) error

	// ClearAll wipes every collection and metadata entry.
	ClearAll(ctx context.Context) error

	// Close closes the store.
	Close() error
}
