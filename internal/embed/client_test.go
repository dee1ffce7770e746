package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Samples    []float64 `json:"samples"`
			SampleRate int       `json:"sample_rate"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 16000, req.SampleRate)
		assert.Len(t, req.Samples, 3)

		json.NewEncoder(w).Encode(map[string][]float64{"embedding": {0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	emb, err := c.Embed(context.Background(), []float64{0.5, -0.5, 0}, 16000)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, emb)
}

func TestEmbedEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]float64{"embedding": {}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Embed(context.Background(), []float64{0.5}, 16000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty vector")
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Embed(context.Background(), []float64{0.5}, 16000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestEmbedUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/embed", time.Second)
	_, err := c.Embed(context.Background(), []float64{0.5}, 16000)
	assert.Error(t, err)
}
