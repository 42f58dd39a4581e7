package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/kandang/internal/model"
)

// Memory is an in-process system of record. It assigns ids and fills
// defaults the way the spreadsheet backend does, counts calls, and can be
// told to fail.
type Memory struct {
	mu      sync.Mutex
	rows    map[model.Collection][]model.Record
	calls   map[string]int
	listErr map[model.Collection]error
	errs    map[model.Op]error
	reject  map[model.Op]string
	latency time.Duration
	entropy *rand.Rand
}

// serverDefaults mirrors the backend's fallbacks for missing fields.
var serverDefaults = map[model.Collection]model.Record{
	model.BreedingStock: {"status": "Sehat"},
	model.BreedingEvent: {"jumlah_anakan": float64(0)},
	model.Offspring:     {"status": "Sehat"},
}

// NewMemory returns an empty authority.
func NewMemory() *Memory {
	return &Memory{
		rows:    make(map[model.Collection][]model.Record),
		calls:   make(map[string]int),
		listErr: make(map[model.Collection]error),
		errs:    make(map[model.Op]error),
		reject:  make(map[model.Op]string),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed appends records to a collection as-is.
func (m *Memory) Seed(c model.Collection, records ...model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.rows[c] = append(m.rows[c], r.Clone())
	}
}

// FailList makes List on c return err until cleared with a nil err.
func (m *Memory) FailList(c model.Collection, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.listErr, c)
		return
	}
	m.listErr[c] = err
}

// FailWrites makes op return err (a transport-style failure).
func (m *Memory) FailWrites(op model.Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// RejectWrites makes op answer {success:false, error:msg}.
func (m *Memory) RejectWrites(op model.Op, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg == "" {
		delete(m.reject, op)
		return
	}
	m.reject[op] = msg
}

// SetLatency delays every call, so tests can interleave callers.
func (m *Memory) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// Calls returns how many times op ("list", "create", "update", "delete")
// was invoked on c.
func (m *Memory) Calls(op string, c model.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op+":"+string(c)]
}

// Rows returns a copy of what the authority currently holds.
func (m *Memory) Rows(c model.Collection) []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Record, 0, len(m.rows[c]))
	for _, r := range m.rows[c] {
		out = append(out, r.Clone())
	}
	return out
}

func (m *Memory) enter(ctx context.Context, op string, c model.Collection) error {
	m.mu.Lock()
	m.calls[op+":"+string(c)]++
	latency := m.latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return fmt.Errorf("%w: %s %s: %w", ErrNetwork, op, c, ctx.Err())
		}
	}
	return nil
}

func (m *Memory) List(ctx context.Context, c model.Collection) ([]model.Record, error) {
	if err := m.enter(ctx, "list", c); err != nil {
		return nil, err
	}
	m.mu.Lock()
	err := m.listErr[c]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Rows(c), nil
}

func (m *Memory) write(ctx context.Context, op model.Op, c model.Collection) (Result, bool, error) {
	if err := m.enter(ctx, string(op), c); err != nil {
		return Result{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[op]; err != nil {
		return Result{}, false, err
	}
	if msg := m.reject[op]; msg != "" {
		return Result{Success: false, Error: msg}, false, nil
	}
	return Result{}, true, nil
}

func (m *Memory) Create(ctx context.Context, c model.Collection, fields model.Record) (Result, error) {
	res, ok, err := m.write(ctx, model.OpCreate, c)
	if !ok {
		return res, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row := serverDefaults[c].Clone()
	for k, v := range fields {
		if _, hasDefault := row[k]; hasDefault && fields.String(k) == "" {
			continue
		}
		row[k] = v
	}
	row["id"] = ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
	m.rows[c] = append(m.rows[c], row)
	return Result{Success: true, Data: row.Clone()}, nil
}

func (m *Memory) Update(ctx context.Context, c model.Collection, id string, fields model.Record) (Result, error) {
	res, ok, err := m.write(ctx, model.OpUpdate, c)
	if !ok {
		return res, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows[c] {
		if r.ID() == id {
			row := r.Merge(fields)
			row["id"] = id
			m.rows[c][i] = row
			return Result{Success: true}, nil
		}
	}
	return Result{Success: false, Error: fmt.Sprintf("id %s not found", id)}, nil
}

func (m *Memory) Delete(ctx context.Context, c model.Collection, id string) (Result, error) {
	res, ok, err := m.write(ctx, model.OpDelete, c)
	if !ok {
		return res, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.rows[c]
	for i, r := range rows {
		if r.ID() == id {
			m.rows[c] = append(rows[:i:i], rows[i+1:]...)
			return Result{Success: true}, nil
		}
	}
	return Result{Success: false, Error: fmt.Sprintf("id %s not found", id)}, nil
}
