package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/rcliao/kandang/internal/freshness"
	"github.com/rcliao/kandang/internal/model"
)

// SQLiteStore implements Store using SQLite. One database file is one
// cache namespace.
type SQLiteStore struct {
	path string
	now  freshness.Clock

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used to stamp fetch times.
func WithClock(c freshness.Clock) Option {
	return func(s *SQLiteStore) { s.now = c }
}

// Open returns a store for dbPath without touching the disk. The database is
// opened on Init or lazily by the first operation.
func Open(dbPath string, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{path: dbPath, now: freshness.SystemClock}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	s := Open(dbPath, opts...)
	if err := s.Init(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Init(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

func (s *SQLiteStore) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: store closed", ErrStorageUnavailable)
	}
	if s.db != nil {
		return s.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %w", ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrStorageUnavailable, err)
	}
	// Writers serialize on one connection; concurrent callers queue here
	// instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrStorageUnavailable, err)
	}

	s.db = db
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, c := range model.Collections {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id   TEXT PRIMARY KEY,
			data TEXT NOT NULL
		)`, c.Sheet()))
		if err != nil {
			return err
		}
	}

	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS cache_metadata (
		collection   TEXT PRIMARY KEY,
		last_fetch   INTEGER,
		record_count INTEGER NOT NULL DEFAULT 0
	)`)
	return err
}

func unavailable(op string, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func table(c model.Collection) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", model.ErrUnknownCollection, c)
	}
	return c.Sheet(), nil
}

func (s *SQLiteStore) GetAll(ctx context.Context, c model.Collection) ([]model.Record, error) {
	t, err := table(c)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT data FROM `+t+` ORDER BY rowid`)
	if err != nil {
		return nil, unavailable("get all", err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("get all", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("get all", err)
	}
	return records, nil
}

func (s *SQLiteStore) GetOne(ctx context.Context, c model.Collection, id string) (model.Record, error) {
	t, err := table(c)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	r, err := scanRecord(db.QueryRowContext(ctx, `SELECT data FROM `+t+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	if err != nil {
		return nil, unavailable("get one", err)
	}
	return r, nil
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, c model.Collection, records []model.Record) error {
	t, err := table(c)
	if err != nil {
		return err
	}

	encoded := make([][2]string, 0, len(records))
	for i, r := range records {
		id := r.ID()
		if id == "" {
			return fmt.Errorf("replace %s: record %d: %w", c, i, model.ErrMissingID)
		}
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("replace %s: encode %s: %w", c, id, err)
		}
		encoded = append(encoded, [2]string{id, string(b)})
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
		return unavailable("replace: clear", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+t+` (id, data) VALUES (?, ?)`)
	if err != nil {
		return unavailable("replace", err)
	}
	defer stmt.Close()

	for _, e := range encoded {
		if _, err := stmt.ExecContext(ctx, e[0], e[1]); err != nil {
			return unavailable("replace: insert "+e[0], err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cache_metadata (collection, last_fetch, record_count) VALUES (?, ?, ?)
		 ON CONFLICT(collection) DO UPDATE SET last_fetch = excluded.last_fetch, record_count = excluded.record_count`,
		string(c), s.now().UnixMilli(), len(encoded))
	if err != nil {
		return unavailable("replace: metadata", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("replace: commit", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertOne(ctx context.Context, c model.Collection, r model.Record) error {
	t, err := table(c)
	if err != nil {
		return err
	}
	id := r.ID()
	if id == "" {
		return fmt.Errorf("upsert %s: %w", c, model.ErrMissingID)
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("upsert %s: encode %s: %w", c, id, err)
	}

	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("upsert", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t+` WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return unavailable("upsert", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+t+` (id, data) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`, id, string(b))
	if err != nil {
		return unavailable("upsert", err)
	}

	if exists == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cache_metadata (collection, last_fetch, record_count) VALUES (?, NULL, 1)
			 ON CONFLICT(collection) DO UPDATE SET record_count = record_count + 1`, string(c))
		if err != nil {
			return unavailable("upsert: metadata", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("upsert: commit", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteOne(ctx context.Context, c model.Collection, id string) error {
	t, err := table(c)
	if err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("delete", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE id = ?`, id)
	if err != nil {
		return unavailable("delete", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE cache_metadata SET record_count = MAX(record_count - 1, 0) WHERE collection = ?`, string(c))
		if err != nil {
			return unavailable("delete: metadata", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("delete: commit", err)
	}
	return nil
}

func (s *SQLiteStore) GetMetadata(ctx context.Context, c model.Collection) (*model.Metadata, error) {
	if _, err := table(c); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	m, err := scanMetadata(db.QueryRowContext(ctx,
		`SELECT collection, last_fetch, record_count FROM cache_metadata WHERE collection = ?`, string(c)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("metadata", err)
	}
	return m, nil
}

func (s *SQLiteStore) Invalidate(ctx context.Context, c model.Collection) error {
	if _, err := table(c); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `UPDATE cache_metadata SET last_fetch = NULL WHERE collection = ?`, string(c))
	if err != nil {
		return unavailable("invalidate", err)
	}
	return nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("clear", err)
	}
	defer tx.Rollback()

	for _, c := range model.Collections {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+c.Sheet()); err != nil {
			return unavailable("clear "+string(c), err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_metadata`); err != nil {
		return unavailable("clear metadata", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("clear: commit", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (model.Record, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var r model.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

func scanMetadata(row scanner) (*model.Metadata, error) {
	var m model.Metadata
	var collection string
	var lastFetch sql.NullInt64

	if err := row.Scan(&collection, &lastFetch, &m.Count); err != nil {
		return nil, err
	}
	m.Collection = model.Collection(collection)
	if lastFetch.Valid {
		t := time.UnixMilli(lastFetch.Int64).UTC()
		m.LastFetch = &t
	}
	return &m, nil
}
