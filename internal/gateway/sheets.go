package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/rcliao/kandang/internal/model"
)

// Sheets is a client for the spreadsheet web app. Reads are
// GET ?path=<sheet>; writes are POSTed as {"action": "<op>_<sheet>", ...}.
type Sheets struct {
	url    string
	client *resty.Client
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// NewSheets creates a client for the web app at url. timeout bounds each
// request; zero means no timeout.
func NewSheets(url string, timeout time.Duration) *Sheets {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &Sheets{url: url, client: client}
}

func (s *Sheets) List(ctx context.Context, c model.Collection) ([]model.Record, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("path", c.Sheet()).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrNetwork, c, err)
	}

	env, err := decode(resp)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &RemoteError{Status: resp.StatusCode(), Message: env.Error}
	}

	records := make([]model.Record, 0)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, &RemoteError{Status: resp.StatusCode(), Message: "invalid list payload: " + err.Error()}
		}
	}
	return records, nil
}

func (s *Sheets) Create(ctx context.Context, c model.Collection, fields model.Record) (Result, error) {
	return s.post(ctx, "add_"+c.Sheet(), "", fields)
}

func (s *Sheets) Update(ctx context.Context, c model.Collection, id string, fields model.Record) (Result, error) {
	return s.post(ctx, "update_"+c.Sheet(), id, fields)
}

func (s *Sheets) Delete(ctx context.Context, c model.Collection, id string) (Result, error) {
	return s.post(ctx, "delete_"+c.Sheet(), id, nil)
}

func (s *Sheets) post(ctx context.Context, action, id string, fields model.Record) (Result, error) {
	body := map[string]any{}
	for k, v := range fields {
		body[k] = v
	}
	body["action"] = action
	if id != "" {
		body["id"] = id
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(s.url)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrNetwork, action, err)
	}

	env, err := decode(resp)
	if err != nil {
		return Result{}, err
	}

	res := Result{Success: env.Success, Error: env.Error}
	if len(env.Data) > 0 && env.Data[0] == '{' {
		if err := json.Unmarshal(env.Data, &res.Data); err != nil {
			return Result{}, &RemoteError{Status: resp.StatusCode(), Message: "invalid record payload: " + err.Error()}
		}
	}
	return res, nil
}

func decode(resp *resty.Response) (*envelope, error) {
	if resp.IsError() {
		return nil, &RemoteError{Status: resp.StatusCode(), Message: truncate(resp.String(), 200)}
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &RemoteError{Status: resp.StatusCode(), Message: "invalid response: " + truncate(resp.String(), 200)}
	}
	return &env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
