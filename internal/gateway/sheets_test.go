package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/kandang/internal/model"
)

func TestSheetsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "ayam_induk", r.URL.Query().Get("path"))
		io.WriteString(w, `{"success":true,"data":[{"id":"X","kode":"IND-001","status":"Sehat"},{"id":"Y","kode":"IND-002","status":"Sakit"}]}`)
	}))
	defer srv.Close()

	records, err := NewSheets(srv.URL, time.Second).List(context.Background(), model.BreedingStock)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "X", records[0].ID())
	assert.Equal(t, "Sakit", records[1]["status"])
}

func TestSheetsListFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"success false", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"success":false,"error":"Sheet \"ayam_induk\" tidak ditemukan"}`)
		}},
		{"http 500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"html login page", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>Sign in</html>`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewSheets(srv.URL, time.Second).List(context.Background(), model.BreedingStock)
			var rerr *RemoteError
			require.ErrorAs(t, err, &rerr)
			assert.NotEmpty(t, rerr.Message)
		})
	}
}

func TestSheetsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewSheets(url, time.Second).List(context.Background(), model.Offspring)
	assert.True(t, errors.Is(err, ErrNetwork), "expected ErrNetwork, got %v", err)

	_, err = NewSheets(url, time.Second).Delete(context.Background(), model.Offspring, "K1")
	assert.True(t, errors.Is(err, ErrNetwork), "expected ErrNetwork, got %v", err)
}

func TestSheetsWrites(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		bodies = append(bodies, body)

		switch body["action"] {
		case "add_breeding":
			io.WriteString(w, `{"success":true,"data":{"id":"B9","pejantan_id":"P1","betina_id":"F1","jumlah_anakan":0}}`)
		case "update_breeding":
			io.WriteString(w, `{"success":true}`)
		default:
			io.WriteString(w, `{"success":false,"error":"Invalid action"}`)
		}
	}))
	defer srv.Close()

	s := NewSheets(srv.URL, time.Second)
	ctx := context.Background()

	res, err := s.Create(ctx, model.BreedingEvent, model.Record{"pejantan_id": "P1", "betina_id": "F1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "B9", res.Data.ID())

	res, err = s.Update(ctx, model.BreedingEvent, "B9", model.Record{"jumlah_anakan": float64(5)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Data)

	res, err = s.Delete(ctx, model.BreedingEvent, "B9")
	require.NoError(t, err, "a success:false answer is a result, not an error")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid action", res.Error)

	require.Len(t, bodies, 3)
	assert.Equal(t, "P1", bodies[0]["pejantan_id"])
	assert.Nil(t, bodies[0]["id"])
	assert.Equal(t, "B9", bodies[1]["id"])
	assert.Equal(t, float64(5), bodies[1]["jumlah_anakan"])
	assert.Equal(t, "delete_breeding", bodies[2]["action"])
}
