package geocoding

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/storage"
	"golang.org/x/time/rate"
)

// DefaultRequestDelay spaces consecutive geocoding requests to stay under the
// public Nominatim limit of one request per second.
const DefaultRequestDelay = 1100 * time.Millisecond

// Options configures a Resolver.
type Options struct {
	// Region is appended to direct queries, e.g. "Vancouver, BC".
	Region string
	// Delay is the minimum spacing between external requests. Zero disables pacing.
	Delay time.Duration
}

// Pair is one location/community combination to resolve.
type Pair struct {
	Location  string
	Community string
}

// Key returns the cache and override key for a pair.
func Key(location, community string) string {
	return location + "|" + community
}

// Resolver looks up coordinates for camp locations.
type Resolver struct {
	geocoder  Geocoder
	cache     *storage.GeocodeStore
	overrides Overrides
	region    string
	limiter   *rate.Limiter
	metrics   *observability.Metrics
}

// NewResolver wires a Resolver around an explicit cache and override table.
func NewResolver(geocoder Geocoder, cache *storage.GeocodeStore, overrides Overrides, opts Options, metrics *observability.Metrics) *Resolver {
	if overrides == nil {
		overrides = Overrides{}
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Resolver{
		geocoder:  geocoder,
		cache:     cache,
		overrides: overrides,
		region:    opts.Region,
		limiter:   rate.NewLimiter(rate.Every(opts.Delay), 1),
		metrics:   metrics,
	}
}

// Resolve returns the coordinate for a location, or nil when it has none.
// Lookup order: cache, override sentinel, override address, direct query.
// Every completed lookup is cached, failures included.
func (r *Resolver) Resolve(ctx context.Context, location, community string) *models.Coordinate {
	if strings.TrimSpace(location) == "" {
		return nil
	}

	key := Key(location, community)
	if coord, ok := r.cache.Get(key); ok {
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coord
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	coord := r.lookup(ctx, key, location, community)
	if ctx.Err() != nil {
		// interrupted lookups are retried next run
		return nil
	}
	r.cache.Set(key, coord)
	return coord
}

func (r *Resolver) lookup(ctx context.Context, key, location, community string) *models.Coordinate {
	if address, ok := r.overrides[key]; ok {
		if address == nil {
			slog.Debug("Location marked as having no address", "key", key)
			return nil
		}
		if coord := r.search(ctx, key, *address); coord != nil {
			return coord
		}
		slog.Debug("Override address not found, falling back to direct query", "key", key, "address", *address)
	}

	return r.search(ctx, key, r.directQuery(location, community))
}

func (r *Resolver) directQuery(location, community string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{location, community, r.region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (r *Resolver) search(ctx context.Context, key, query string) *models.Coordinate {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}

	coord, err := r.geocoder.Search(ctx, query)
	switch {
	case err != nil:
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		slog.Warn("Geocoding failed", "key", key, "query", query, "err", err)
		return nil
	case coord == nil:
		r.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		slog.Info("No geocoding result", "key", key, "query", query)
		return nil
	default:
		r.metrics.GeocodeRequests.WithLabelValues("success").Inc()
		return coord
	}
}

// Warm resolves every distinct uncached pair one at a time, then flushes the
// cache. It returns the number of pairs looked up.
func (r *Resolver) Warm(ctx context.Context, pairs []Pair) (int, error) {
	seen := map[string]bool{}
	var pending []Pair
	for _, p := range pairs {
		key := Key(p.Location, p.Community)
		if seen[key] || strings.TrimSpace(p.Location) == "" {
			continue
		}
		seen[key] = true
		if _, ok := r.cache.Get(key); ok {
			continue
		}
		pending = append(pending, p)
	}

	if len(pending) > 0 {
		slog.Info("Geocoding new locations", "count", len(pending), "cached", r.cache.Len())
	}

	done := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		r.Resolve(ctx, p.Location, p.Community)
		done++
		slog.Debug("Geocoded location", "key", Key(p.Location, p.Community), "progress", done, "total", len(pending))
	}

	if err := r.cache.Flush(); err != nil {
		return done, err
	}
	return done, ctx.Err()
}

// Apply warms the cache for every record and attaches coordinates in place.
func (r *Resolver) Apply(ctx context.Context, camps []models.CampRecord) error {
	pairs := make([]Pair, len(camps))
	for i, c := range camps {
		pairs[i] = Pair{Location: c.Location, Community: c.Community}
	}

	if _, err := r.Warm(ctx, pairs); err != nil {
		return err
	}

	for i := range camps {
		camps[i].Coordinates = r.Resolve(ctx, camps[i].Location, camps[i].Community)
	}
	return nil
}
