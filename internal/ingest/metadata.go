package ingest

import (
	"sort"
	"time"

	"github.com/parkrec/campdata/internal/models"
)

// BuildMetadata collects the sorted distinct filter vocabularies of a sheet.
func BuildMetadata(camps []models.CampRecord, generatedAt time.Time, runID string) models.SheetMetadata {
	categories := map[string]struct{}{}
	communities := map[string]struct{}{}
	locations := map[string]struct{}{}
	dateRanges := map[string]struct{}{}

	for _, c := range camps {
		add(categories, c.Category)
		add(communities, c.Community)
		add(locations, c.Location)
		add(dateRanges, c.DateRange)
	}

	return models.SheetMetadata{
		Categories:  sortedKeys(categories),
		Communities: sortedKeys(communities),
		Locations:   sortedKeys(locations),
		DateRanges:  sortedKeys(dateRanges),
		TotalCount:  len(camps),
		GeneratedAt: generatedAt,
		RunID:       runID,
	}
}

func add(set map[string]struct{}, value string) {
	if value != "" {
		set[value] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
