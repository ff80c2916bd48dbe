package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("sheet-1", "key-1")
	c.baseURL = srv.URL
	return c
}

func TestLookupFiltersByLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "sheet-1")
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"values": [][]string{
				{"Alice", "15550001", "Austin", "active"},
				{"Bob", "15550002", "Dallas", "active"},
				{"Carol", "15550003", "austin", "busy"},
				{"Dave", "15550004"}, // short row, skipped
			},
		})
	})

	candidates, err := c.Lookup(context.Background(), "Austin")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Alice", candidates[0].Name)
	assert.Equal(t, "15550001", candidates[0].Address)
	assert.Equal(t, "active", candidates[0].Status)

	// Matching is case-insensitive and sheet order is preserved.
	assert.Equal(t, "Carol", candidates[1].Name)
	assert.Equal(t, "busy", candidates[1].Status)
}

func TestLookupDefaultsMissingStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"values": [][]string{
				{"Alice", "15550001", "Austin"},
			},
		})
	})

	candidates, err := c.Lookup(context.Background(), "Austin")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "active", candidates[0].Status)
}

func TestLookupEmptySheet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{})
	})

	candidates, err := c.Lookup(context.Background(), "Austin")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestLookupAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := c.Lookup(context.Background(), "Austin")
	assert.Error(t, err)
}
