package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMarshalsParsedOrRaw(t *testing.T) {
	rec := CampRecord{
		Title:   "Nature Explorers",
		Fee:     Parsed(139.0),
		MinAge:  Unparsed[int]("Grade 3"),
		EndDate: Field[ParsedDate]{},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 139.0, raw["fee"])
	assert.Equal(t, "Grade 3", raw["minAge"])
	assert.NotContains(t, raw, "endDate")
}

func TestFieldUnmarshalKeepsShape(t *testing.T) {
	var date Field[ParsedDate]
	require.NoError(t, json.Unmarshal([]byte(`{"iso":"2026-06-15","year":2026,"month":6,"day":15}`), &date))
	require.True(t, date.Ok())
	assert.Equal(t, "2026-06-15", date.Value.ISO)

	var raw Field[ParsedDate]
	require.NoError(t, json.Unmarshal([]byte(`"TBD"`), &raw))
	assert.False(t, raw.Ok())
	assert.Equal(t, "TBD", raw.Raw)

	var bad Field[int]
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &bad))
}

func TestDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camps.json")
	dataset := Dataset{
		"Summer": {
			Camps: []CampRecord{{
				Title:       "Nature Explorers",
				Coordinates: &Coordinate{Lat: 49.28, Lng: -123.12},
				StartDate:   Parsed(ParsedDate{ISO: "2026-07-06", Year: 2026, Month: 7, Day: 6}),
			}},
			Metadata: SheetMetadata{TotalCount: 1, GeneratedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	require.NoError(t, WriteDataset(dataset, path, nil))
	loaded, err := LoadDataset(path)
	require.NoError(t, err)

	require.Contains(t, loaded, "Summer")
	camp := loaded["Summer"].Camps[0]
	assert.Equal(t, "Nature Explorers", camp.Title)
	assert.Equal(t, 49.28, camp.Coordinates.Lat)
	assert.Equal(t, time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC), camp.StartDate.Value.Time())
	assert.Equal(t, []string{"Summer"}, loaded.SheetNames())
}

func TestLoadDatasetRejectsNullSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camps.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Summer": null}`), 0644))

	_, err := LoadDataset(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Summer" is null`)
}
