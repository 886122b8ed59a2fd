// Package geocoding resolves camp locations to coordinates through a persistent
// cache, a manual override table and a rate-limited external search.
package geocoding

import (
	"context"

	"github.com/parkrec/campdata/internal/models"
)

// Geocoder performs a single-result forward search. A nil coordinate with a
// nil error means the service found nothing.
type Geocoder interface {
	Search(ctx context.Context, query string) (*models.Coordinate, error)
}
