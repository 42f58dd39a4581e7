// Package cache coordinates the local store and the remote sheet: reads are
// served from cache while fresh, writes go remote first and then patch the
// cache in place.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/kandang/internal/freshness"
	"github.com/rcliao/kandang/internal/gateway"
	"github.com/rcliao/kandang/internal/model"
	"github.com/rcliao/kandang/internal/store"
)

// ReadResult is a collection snapshot and where it came from.
type ReadResult struct {
	Collection model.Collection `json:"collection"`
	Records    []model.Record   `json:"data"`
	FromCache  bool             `json:"from_cache"`
	Stale      bool             `json:"stale"`
}

// Service is the read/write entry point for consumers. It holds no state
// of its own beyond its collaborators and is safe for concurrent use.
type Service struct {
	store   store.Store
	remote  gateway.Gateway
	policy  freshness.Policy
	log     *slog.Logger
	metrics *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy overrides the freshness policy (tests inject a clock).
func WithPolicy(p freshness.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the counters the service reports to.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New wires a Service over a store and a remote gateway.
func New(st store.Store, remote gateway.Gateway, opts ...Option) *Service {
	s := &Service{
		store:  st,
		remote: remote,
		policy: freshness.Default(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Read returns a collection, from cache when fresh and non-empty, otherwise
// from the remote. When the remote fails, any cached records are served
// with Stale set; with nothing cached the remote error is returned.
func (s *Service) Read(ctx context.Context, c model.Collection, force bool) (*ReadResult, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownCollection, c)
	}
	start := time.Now()

	if !force {
		if records, ok := s.cached(ctx, c); ok {
			s.metrics.read(string(c), outcomeHit)
			s.log.Debug("cache hit", "collection", c, "records", len(records), "elapsed", time.Since(start))
			return &ReadResult{Collection: c, Records: records, FromCache: true}, nil
		}
	}

	records, err := s.remote.List(ctx, c)
	if err != nil {
		stale, serr := s.store.GetAll(context.WithoutCancel(ctx), c)
		if serr != nil {
			s.log.Warn("cache unavailable for fallback", "collection", c, "err", serr)
		}
		if serr == nil && len(stale) > 0 {
			s.metrics.read(string(c), outcomeStale)
			s.log.Warn("serving stale cache, remote failed", "collection", c, "records", len(stale), "err", err)
			return &ReadResult{Collection: c, Records: stale, FromCache: true, Stale: true}, nil
		}
		s.metrics.read(string(c), outcomeError)
		s.log.Error("read failed, nothing cached", "collection", c, "err", err)
		return nil, fmt.Errorf("read %s: %w", c, err)
	}
	if records == nil {
		records = []model.Record{}
	}

	if err := s.store.ReplaceAll(context.WithoutCancel(ctx), c, records); err != nil {
		s.log.Warn("fetched but not cached", "collection", c, "err", err)
	}
	s.metrics.read(string(c), outcomeMiss)
	s.log.Info("fetched from remote", "collection", c, "records", len(records), "elapsed", time.Since(start))
	return &ReadResult{Collection: c, Records: records}, nil
}

// cached returns the stored snapshot when it may be served without the
// remote. An empty fresh collection counts as a miss.
func (s *Service) cached(ctx context.Context, c model.Collection) ([]model.Record, bool) {
	meta, err := s.store.GetMetadata(ctx, c)
	if err != nil {
		s.log.Warn("cache metadata unavailable, treating as miss", "collection", c, "err", err)
		return nil, false
	}
	if !s.policy.Fresh(meta) {
		return nil, false
	}
	records, err := s.store.GetAll(ctx, c)
	if err != nil {
		s.log.Warn("cache unavailable, treating as miss", "collection", c, "err", err)
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}
	return records, true
}

// Write validates payload, performs op on the remote, and on success patches
// the cache without re-reading. Any remote failure, including a
// success:false answer, invalidates the collection and is returned as an
// error alongside the remote result.
func (s *Service) Write(ctx context.Context, op model.Op, c model.Collection, payload model.Record) (gateway.Result, error) {
	if !c.Valid() {
		return gateway.Result{}, fmt.Errorf("%w: %q", model.ErrUnknownCollection, c)
	}

	fields, err := model.Normalize(c, payload)
	if err == nil {
		err = model.Validate(c, op, fields)
	}
	if err != nil {
		s.metrics.write(string(c), string(op), outcomeRejected)
		return gateway.Result{}, err
	}

	res, err := gateway.Call(ctx, s.remote, op, c, fields)
	if err == nil && !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "write not acknowledged"
		}
		err = &gateway.RemoteError{Message: msg}
	}

	// The caller may give up, but the cache bookkeeping must still land.
	local := context.WithoutCancel(ctx)

	if err != nil {
		s.invalidate(local, c)
		s.metrics.write(string(c), string(op), outcomeFailed)
		s.log.Error("remote write failed, cache invalidated", "op", op, "collection", c, "id", fields.ID(), "err", err)
		return res, fmt.Errorf("%s %s: %w", op, c, err)
	}

	if perr := s.patch(local, op, c, fields, res); perr != nil {
		s.log.Warn("cache patch failed, invalidating", "op", op, "collection", c, "err", perr)
		s.invalidate(local, c)
	}
	s.metrics.write(string(c), string(op), outcomeOK)
	s.log.Info("remote write ok", "op", op, "collection", c, "id", writtenID(fields, res))
	return res, nil
}

func (s *Service) patch(ctx context.Context, op model.Op, c model.Collection, fields model.Record, res gateway.Result) error {
	switch op {
	case model.OpCreate:
		if res.Data == nil || res.Data.ID() == "" {
			s.log.Debug("create returned no record, cache waits for next fetch", "collection", c)
			return nil
		}
		return s.store.UpsertOne(ctx, c, res.Data)
	case model.OpUpdate:
		rec := fields.Clone()
		if existing, err := s.store.GetOne(ctx, c, fields.ID()); err == nil {
			rec = existing.Merge(fields)
		}
		return s.store.UpsertOne(ctx, c, rec)
	case model.OpDelete:
		return s.store.DeleteOne(ctx, c, fields.ID())
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, c model.Collection) {
	if err := s.store.Invalidate(ctx, c); err != nil {
		s.log.Warn("invalidate failed", "collection", c, "err", err)
	}
}

func writtenID(fields model.Record, res gateway.Result) string {
	if res.Data != nil {
		return res.Data.ID()
	}
	return fields.ID()
}

// RefreshResult is the outcome of one collection in RefreshAll. OK follows
// the forced read: a stale fallback still succeeds, with Stale set.
type RefreshResult struct {
	OK    bool `json:"ok"`
	Stale bool `json:"stale"`
}

// RefreshAll force-reads every collection in parallel. Each collection
// succeeds or fails on its own; the error joins every failure.
func (s *Service) RefreshAll(ctx context.Context, colls ...model.Collection) (map[model.Collection]RefreshResult, error) {
	if len(colls) == 0 {
		colls = model.Collections
	}

	var (
		mu      sync.Mutex
		errs    *multierror.Error
		outcome = make(map[model.Collection]RefreshResult, len(colls))
		g       errgroup.Group
	)
	for _, c := range colls {
		c := c
		g.Go(func() error {
			res, err := s.Read(ctx, c, true)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome[c] = RefreshResult{}
				errs = multierror.Append(errs, err)
				return nil
			}
			outcome[c] = RefreshResult{OK: true, Stale: res.Stale}
			return nil
		})
	}
	_ = g.Wait()

	failed, stale := 0, 0
	if errs != nil {
		failed = len(errs.Errors)
	}
	for _, r := range outcome {
		if r.Stale {
			stale++
		}
	}
	s.log.Info("refresh completed", "collections", len(colls), "failed", failed, "stale", stale)
	return outcome, errs.ErrorOrNil()
}

// ReadOffspring reads the whole offspring collection and keeps those of one
// breeding event. The cache never holds a partial offspring collection.
func (s *Service) ReadOffspring(ctx context.Context, breedingID string, force bool) (*ReadResult, error) {
	res, err := s.Read(ctx, model.Offspring, force)
	if err != nil || breedingID == "" {
		return res, err
	}
	filtered := make([]model.Record, 0)
	for _, r := range res.Records {
		if r.String("breeding_id") == breedingID {
			filtered = append(filtered, r)
		}
	}
	res.Records = filtered
	return res, nil
}

// Lookup resolves a cross-reference. A dangling id is reported as absent,
// never as an error.
func (s *Service) Lookup(ctx context.Context, c model.Collection, id string) (model.Record, bool) {
	if id == "" {
		return nil, false
	}
	res, err := s.Read(ctx, c, false)
	if err != nil {
		return nil, false
	}
	for _, r := range res.Records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Invalidate forces the next read of c to go remote.
func (s *Service) Invalidate(ctx context.Context, c model.Collection) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownCollection, c)
	}
	return s.store.Invalidate(ctx, c)
}

// ClearCache wipes every cached collection.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.log.Info("cache cleared")
	return nil
}

type statser interface {
	Stats(ctx context.Context, p freshness.Policy) (*store.Stats, error)
}

// Stats reports per-collection cache state when the store supports it.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	st, ok := s.store.(statser)
	if !ok {
		return nil, errors.New("store does not report stats")
	}
	return st.Stats(ctx, s.policy)
}
