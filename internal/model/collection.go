// Package model defines the cached record types and their field schemas.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Collection names one cached entity kind.
type Collection string

const (
	BreedingStock Collection = "breeding-stock"
	BreedingEvent Collection = "breeding-event"
	Offspring     Collection = "offspring"
)

// Collections lists every collection in dashboard load order.
var Collections = []Collection{BreedingStock, BreedingEvent, Offspring}

// ErrUnknownCollection is returned for names outside the fixed set.
var ErrUnknownCollection = errors.New("unknown collection")

var sheets = map[Collection]string{
	BreedingStock: "ayam_induk",
	BreedingEvent: "breeding",
	Offspring:     "ayam_anakan",
}

var aliases = map[string]Collection{
	"breeding-stock": BreedingStock,
	"ayam_induk":     BreedingStock,
	"induk":          BreedingStock,
	"breeding-event": BreedingEvent,
	"breeding":       BreedingEvent,
	"offspring":      Offspring,
	"ayam_anakan":    Offspring,
	"anakan":         Offspring,
}

// Sheet returns the remote sheet name, which doubles as the local table name.
func (c Collection) Sheet() string {
	return sheets[c]
}

// Valid reports whether c is one of the fixed collections.
func (c Collection) Valid() bool {
	_, ok := sheets[c]
	return ok
}

func (c Collection) String() string { return string(c) }

// ParseCollection resolves a symbolic name, sheet name or short alias.
func ParseCollection(s string) (Collection, error) {
	if c, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q (valid: induk, breeding, anakan)", ErrUnknownCollection, s)
}

// Metadata records the last successful full fetch of a collection.
// A nil LastFetch means the collection was never fetched or was invalidated.
type Metadata struct {
	Collection Collection `json:"collection"`
	LastFetch  *time.Time `json:"last_fetch,omitempty"`
	Count      int        `json:"count"`
}

// Op is a remote write operation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)
