// Package gateway talks to the remote system of record: a spreadsheet
// exposed as a CRUD web app.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/kandang/internal/model"
)

// ErrNetwork wraps transport failures (DNS, refused, timeout).
var ErrNetwork = errors.New("network error")

// RemoteError is a non-success answer from the remote system.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
	}
	return "remote error: " + e.Message
}

// Result is the answer to a write. Data is set by create when the remote
// returns the stored row with its assigned id.
type Result struct {
	Success bool         `json:"success"`
	Data    model.Record `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Gateway is the remote CRUD capability the cache depends on.
type Gateway interface {
	List(ctx context.Context, c model.Collection) ([]model.Record, error)
	Create(ctx context.Context, c model.Collection, fields model.Record) (Result, error)
	Update(ctx context.Context, c model.Collection, id string, fields model.Record) (Result, error)
	Delete(ctx context.Context, c model.Collection, id string) (Result, error)
}

// Call dispatches op to the matching Gateway method. For update and delete
// the id is taken from payload.
func Call(ctx context.Context, g Gateway, op model.Op, c model.Collection, payload model.Record) (Result, error) {
	switch op {
	case model.OpCreate:
		return g.Create(ctx, c, payload)
	case model.OpUpdate:
		fields := payload.Clone()
		delete(fields, "id")
		return g.Update(ctx, c, payload.ID(), fields)
	case model.OpDelete:
		return g.Delete(ctx, c, payload.ID())
	}
	return Result{}, fmt.Errorf("unknown operation %q", op)
}
