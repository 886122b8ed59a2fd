package geocoding

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

func TestNominatimSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Hall B, East", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "campdata-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"49.2827","lon":"-123.1207","display_name":"Hall B"}]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, "campdata-test", 5*time.Second)
	coord, err := c.Search(context.Background(), "Hall B, East")
	require.NoError(t, err)
	require.NotNil(t, coord)
	assert.InDelta(t, 49.2827, coord.Lat, 0.00001)
	assert.InDelta(t, -123.1207, coord.Lng, 0.00001)
}

func TestNominatimSearchEmptyAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "fail" {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, "campdata-test", 5*time.Second)

	coord, err := c.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, coord)

	_, err = c.Search(context.Background(), "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestMapboxSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "Hall B")
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(mapboxResponse{
			Features: []mapboxFeature{{Center: []float64{-123.1207, 49.2827}, PlaceName: "Hall B"}},
		}))
	}))
	defer srv.Close()

	c := NewMapboxClient("test-token", 5*time.Second)
	c.baseURL = srv.URL

	coord, err := c.Search(context.Background(), "Hall B, East")
	require.NoError(t, err)
	require.NotNil(t, coord)
	assert.Equal(t, 49.2827, coord.Lat)
	assert.Equal(t, -123.1207, coord.Lng)
}

func TestMapboxSearchNoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	c := NewMapboxClient("test-token", 5*time.Second)
	c.baseURL = srv.URL

	coord, err := c.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, coord)
}
