package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OnlyWorlds/worldtool/internal/schema"
	"github.com/OnlyWorlds/worldtool/internal/wire"
	"github.com/OnlyWorlds/worldtool/pkg/record"
)

const (
	worldID = "018f0000-0000-7000-8000-00000000000a"
	charID  = "018f0000-0000-7000-8000-00000000000b"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "key",
		APIPin:  "pin",
		WorldID: worldID,
	}, wire.New(schema.NewEngine()))
	return c, srv
}

func TestGetParsesAndCaches(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/character/"+charID+"/", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("API-Key"))
		assert.Equal(t, "pin", r.Header.Get("API-Pin"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         charID,
			"name":       "Eryndor",
			"birthplace": map[string]any{"id": worldID, "name": "Harbor"},
		})
	}))

	r, err := c.Get(context.Background(), record.TypeCharacter, charID)
	require.NoError(t, err)
	assert.Equal(t, "Eryndor", r.Name())
	assert.Equal(t, worldID, r["birthplace"], "embedded references are normalized to IDs")
	assert.Equal(t, worldID, r.WorldID(), "missing world is backfilled")

	// Second get is served from the cache: no network call.
	_, err = c.Get(context.Background(), record.TypeCharacter, charID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// After eviction, the network is consulted again.
	c.Evict(record.TypeCharacter, charID)
	_, err = c.Get(context.Background(), record.TypeCharacter, charID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"401 is unauthorized", http.StatusUnauthorized, record.ErrUnauthorized},
		{"403 is unauthorized", http.StatusForbidden, record.ErrUnauthorized},
		{"404 is not found", http.StatusNotFound, record.ErrNotFound},
		{"422 is validation", http.StatusUnprocessableEntity, record.ErrValidation},
		{"500 is unavailable", http.StatusInternalServerError, record.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			_, err := c.Get(context.Background(), record.TypeCharacter, charID)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c := NewClient(Config{BaseURL: srv.URL}, wire.New(schema.NewEngine()))
	_, err := c.Get(context.Background(), record.TypeCharacter, charID)
	require.ErrorIs(t, err, record.ErrUnavailable)
}

func TestInvalidTypeRejectedLocally(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the network")
	}))
	_, err := c.Get(context.Background(), "characters", charID)
	require.ErrorIs(t, err, record.ErrInvalidType)
}

func TestUpdateSendsPatchAndRefreshesCache(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, map[string]any{"name": "Renamed"}, patch)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   charID,
			"name": "Renamed-by-server",
		})
	}))

	r, err := c.Update(context.Background(), record.TypeCharacter, charID, map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed-by-server", r.Name(), "the server is the merge authority")

	cached, err := c.Get(context.Background(), record.TypeCharacter, charID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed-by-server", cached.Name())
}

func TestCreateSerializesReferences(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, worldID, body["world"])
		assert.Equal(t, charID, body["id"])
		assert.Contains(t, body, "birthplace_id")

		_ = json.NewEncoder(w).Encode(body)
	}))

	_, err := c.Create(context.Background(), record.TypeCharacter, record.Record{
		"id":         charID,
		"name":       "New",
		"world":      worldID,
		"birthplace": nil,
	})
	require.NoError(t, err)
}

func TestDeleteEvicts(t *testing.T) {
	var deletes atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": charID, "name": "X"})
		}
	}))

	_, err := c.Get(context.Background(), record.TypeCharacter, charID)
	require.NoError(t, err)
	require.Equal(t, 1, c.CacheLen())

	require.NoError(t, c.Delete(context.Background(), record.TypeCharacter, charID))
	assert.Equal(t, int32(1), deletes.Load())
	assert.Zero(t, c.CacheLen())
}

func TestCurrentWorldID(t *testing.T) {
	// Configured world wins without a request.
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("configured world must not trigger a request")
	}))
	got, err := c.CurrentWorldID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worldID, got)

	// With no configured world, a sole world from the API is adopted.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/world/", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": worldID, "name": "Sole"}})
	}))
	defer srv.Close()
	c2 := NewClient(Config{BaseURL: srv.URL}, wire.New(schema.NewEngine()))

	got, err = c2.CurrentWorldID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, worldID, got)
}
