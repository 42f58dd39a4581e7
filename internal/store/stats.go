package store

import (
	"context"
	"os"
	"time"

	"github.com/rcliao/kandang/internal/freshness"
	"github.com/rcliao/kandang/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string            `json:"db_path"`
	DBSizeBytes int64             `json:"db_size_bytes"`
	Collections []CollectionStats `json:"collections"`
}

// CollectionStats holds per-collection cache state.
type CollectionStats struct {
	Collection model.Collection `json:"collection"`
	Count      int              `json:"count"`
	Stored     int              `json:"stored"`
	LastFetch  *time.Time       `json:"last_fetch,omitempty"`
	Fresh      bool             `json:"fresh"`
	ExpiresIn  int              `json:"expires_in_seconds"`
}

// Stats returns database statistics, judging freshness with p.
func (s *SQLiteStore) Stats(ctx context.Context, p freshness.Policy) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	db, err := s.conn(ctx)
	if err != nil {
		return st, err
	}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	for _, c := range model.Collections {
		cs := CollectionStats{Collection: c}

		meta, err := s.GetMetadata(ctx, c)
		if err != nil {
			return st, err
		}
		if meta != nil {
			cs.Count = meta.Count
			cs.LastFetch = meta.LastFetch
		}
		cs.Fresh = p.Fresh(meta)
		cs.ExpiresIn = int((p.ExpiresIn(meta) + time.Second - 1) / time.Second)

		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.Sheet()).Scan(&cs.Stored); err != nil {
			return st, unavailable("stats", err)
		}
		st.Collections = append(st.Collections, cs)
	}

	return st, nil
}
