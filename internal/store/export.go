package store

import (
	"context"
	"time"

	"github.com/rcliao/kandang/internal/model"
)

// Export is a full dump of the cache.
type Export struct {
	ExportedAt  time.Time          `json:"exported_at"`
	Collections []CollectionExport `json:"collections"`
}

// CollectionExport is one collection with its metadata.
type CollectionExport struct {
	Collection model.Collection `json:"collection"`
	Metadata   *model.Metadata  `json:"metadata,omitempty"`
	Records    []model.Record   `json:"records"`
}

// ExportAll returns every cached collection, optionally limited to only.
func (s *SQLiteStore) ExportAll(ctx context.Context, only ...model.Collection) (*Export, error) {
	colls := only
	if len(colls) == 0 {
		colls = model.Collections
	}

	out := &Export{ExportedAt: s.now().UTC()}
	for _, c := range colls {
		meta, err := s.GetMetadata(ctx, c)
		if err != nil {
			return nil, err
		}
		records, err := s.GetAll(ctx, c)
		if err != nil {
			return nil, err
		}
		out.Collections = append(out.Collections, CollectionExport{
			Collection: c,
			Metadata:   meta,
			Records:    records,
		})
	}
	return out, nil
}
