package geocoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGeocoder records every query and answers from a fixed table.
type countingGeocoder struct {
	mu      sync.Mutex
	queries []string
	results map[string]*models.Coordinate
	errs    map[string]error
}

func (g *countingGeocoder) Search(_ context.Context, query string) (*models.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	if err := g.errs[query]; err != nil {
		return nil, err
	}
	return g.results[query], nil
}

func (g *countingGeocoder) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}

func ptr(s string) *string { return &s }

func newTestResolver(g Geocoder, cache *storage.GeocodeStore, overrides Overrides) *Resolver {
	return NewResolver(g, cache, overrides, Options{Region: "Vancouver, BC"}, observability.NewMetrics())
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	cache := storage.New()
	cache.Set("Hall B|East", &models.Coordinate{Lat: 49.1, Lng: -123.1})
	cache.Set("Online|West", nil)

	g := &countingGeocoder{}
	r := newTestResolver(g, cache, nil)

	coord := r.Resolve(context.Background(), "Hall B", "East")
	require.NotNil(t, coord)
	assert.Equal(t, 49.1, coord.Lat)

	assert.Nil(t, r.Resolve(context.Background(), "Online", "West"))
	assert.Nil(t, r.Resolve(context.Background(), "Online", "West"))

	assert.Empty(t, g.calls())
	assert.Equal(t, 3.0, testutil.ToFloat64(r.metrics.GeocodeCache.WithLabelValues("hit")))
}

func TestResolveOverrideNullCachesSentinel(t *testing.T) {
	cache := storage.New()
	g := &countingGeocoder{}
	r := newTestResolver(g, cache, Overrides{"Field A|West Community": nil})

	assert.Nil(t, r.Resolve(context.Background(), "Field A", "West Community"))
	assert.Empty(t, g.calls())

	coord, ok := cache.Get("Field A|West Community")
	assert.True(t, ok)
	assert.Nil(t, coord)
}

func TestResolveOverrideAddress(t *testing.T) {
	g := &countingGeocoder{results: map[string]*models.Coordinate{
		"4500 Oak St, Vancouver": {Lat: 49.24, Lng: -123.13},
	}}
	r := newTestResolver(g, storage.New(), Overrides{"Main Gym|South": ptr("4500 Oak St, Vancouver")})

	coord := r.Resolve(context.Background(), "Main Gym", "South")
	require.NotNil(t, coord)
	assert.Equal(t, 49.24, coord.Lat)
	assert.Equal(t, []string{"4500 Oak St, Vancouver"}, g.calls())
}

func TestResolveOverrideMissFallsBackToDirectQuery(t *testing.T) {
	g := &countingGeocoder{results: map[string]*models.Coordinate{
		"Main Gym, South, Vancouver, BC": {Lat: 49.2, Lng: -123.0},
	}}
	r := newTestResolver(g, storage.New(), Overrides{"Main Gym|South": ptr("Unknown Rd")})

	coord := r.Resolve(context.Background(), "Main Gym", "South")
	require.NotNil(t, coord)
	assert.Equal(t, []string{"Unknown Rd", "Main Gym, South, Vancouver, BC"}, g.calls())
}

func TestResolveFailureIsCachedAsSentinel(t *testing.T) {
	cache := storage.New()
	g := &countingGeocoder{errs: map[string]error{
		"Pool, North, Vancouver, BC": errors.New("connection reset"),
	}}
	r := newTestResolver(g, cache, nil)

	assert.Nil(t, r.Resolve(context.Background(), "Pool", "North"))
	assert.Nil(t, r.Resolve(context.Background(), "Pool", "North"))
	assert.Len(t, g.calls(), 1)

	coord, ok := cache.Get("Pool|North")
	assert.True(t, ok)
	assert.Nil(t, coord)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.GeocodeRequests.WithLabelValues("error")))
}

func TestResolveEmptyLocation(t *testing.T) {
	g := &countingGeocoder{}
	cache := storage.New()
	r := newTestResolver(g, cache, nil)

	assert.Nil(t, r.Resolve(context.Background(), "  ", "North"))
	assert.Empty(t, g.calls())
	assert.Equal(t, 0, cache.Len())
}

func TestResolveCancelledContextDoesNotCache(t *testing.T) {
	g := &countingGeocoder{}
	cache := storage.New()
	r := newTestResolver(g, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, r.Resolve(ctx, "Pool", "North"))
	assert.Equal(t, 0, cache.Len())
}

func TestWarmResolvesDistinctKeysAndFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocode-cache.json")
	cache, err := storage.Open(path)
	require.NoError(t, err)
	cache.Set("Hall B|East", &models.Coordinate{Lat: 1, Lng: 1})

	g := &countingGeocoder{results: map[string]*models.Coordinate{
		"Studio 1, West, Vancouver, BC": {Lat: 2, Lng: 2},
	}}
	r := newTestResolver(g, cache, nil)

	n, err := r.Warm(context.Background(), []Pair{
		{"Hall B", "East"},
		{"Studio 1", "West"},
		{"Studio 1", "West"},
		{"Pool", "North"},
		{"", "North"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Studio 1, West, Vancouver, BC", "Pool, North, Vancouver, BC"}, g.calls())

	_, err = os.Stat(path)
	require.NoError(t, err)
	reopened, err := storage.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Len())
}

func TestWarmPacesRequests(t *testing.T) {
	g := &countingGeocoder{}
	r := NewResolver(g, storage.New(), nil, Options{Delay: 40 * time.Millisecond}, observability.NewMetrics())

	start := time.Now()
	n, err := r.Warm(context.Background(), []Pair{{"A", "x"}, {"B", "x"}, {"C", "x"}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.GreaterOrEqual(t, time.Since(start), 75*time.Millisecond)
}

func TestApplyAttachesCoordinates(t *testing.T) {
	g := &countingGeocoder{results: map[string]*models.Coordinate{
		"Hall B, East, Vancouver, BC": {Lat: 49.1, Lng: -123.1},
	}}
	r := newTestResolver(g, storage.New(), Overrides{"Online|West": nil})

	camps := []models.CampRecord{
		{Title: "Robotics", Location: "Hall B", Community: "East"},
		{Title: "Coding", Location: "Hall B", Community: "East"},
		{Title: "Virtual Art", Location: "Online", Community: "West"},
	}
	require.NoError(t, r.Apply(context.Background(), camps))

	require.NotNil(t, camps[0].Coordinates)
	assert.Equal(t, camps[0].Coordinates, camps[1].Coordinates)
	assert.Nil(t, camps[2].Coordinates)
	assert.Len(t, g.calls(), 1)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()

	overrides, err := LoadOverrides(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, overrides)

	path := filepath.Join(dir, "address-overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Field A|West Community": null, "Main Gym|South": "4500 Oak St"}`), 0644))

	overrides, err = LoadOverrides(path)
	require.NoError(t, err)
	assert.Contains(t, overrides, "Field A|West Community")
	assert.Nil(t, overrides["Field A|West Community"])
	assert.Equal(t, "4500 Oak St", *overrides["Main Gym|South"])
}
