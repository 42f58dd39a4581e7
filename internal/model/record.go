package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingID is returned when a record has no identifier.
var ErrMissingID = errors.New("record has no id")

// Record is one flat row of a collection. Every stored record carries "id".
type Record map[string]any

// ID returns the record identifier, or "" when absent.
func (r Record) ID() string {
	return r.String("id")
}

// String returns the field rendered as a string.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns the field as a number. Spreadsheet cells may arrive as
// strings, so numeric strings are accepted.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Time parses the field as an ISO date or timestamp.
func (r Record) Time(field string) (time.Time, bool) {
	return ParseDate(r.String(field))
}

// Clone returns a shallow copy; fields are scalars so this is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with the fields of patch applied on top.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// ParseDate accepts the date shapes the spreadsheet backend emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
