// Package results writes run artifacts other than the dataset JSON.
package results

import (
	"fmt"

	"github.com/parkrec/campdata/internal/models"
	"github.com/parquet-go/parquet-go"
)

// CampRow is the flat, columnar form of a CampRecord
type CampRow struct {
	Sheet         string   `parquet:"sheet,dict"`
	Title         string   `parquet:"title"`
	Code          string   `parquet:"code"`
	Category      string   `parquet:"category,dict"`
	Community     string   `parquet:"community,dict"`
	Location      string   `parquet:"location,dict"`
	Fee           *float64 `parquet:"fee,optional"`
	StartDate     string   `parquet:"start_date"`
	EndDate       string   `parquet:"end_date"`
	StartTime     string   `parquet:"start_time"`
	EndTime       string   `parquet:"end_time"`
	MinAge        *int64   `parquet:"min_age,optional"`
	MaxAge        *int64   `parquet:"max_age,optional"`
	DurationHours *float64 `parquet:"duration_hours,optional"`
	DurationDays  *int64   `parquet:"duration_days,optional"`
	Lat           *float64 `parquet:"lat,optional"`
	Lng           *float64 `parquet:"lng,optional"`
	Description   string   `parquet:"description"`
}

// FlattenDataset converts every record into a CampRow, sheets in name order.
func FlattenDataset(dataset models.Dataset) []CampRow {
	var rows []CampRow
	for _, sheet := range dataset.SheetNames() {
		for _, c := range dataset[sheet].Camps {
			row := CampRow{
				Sheet:         sheet,
				Title:         c.Title,
				Code:          c.Code,
				Category:      c.Category,
				Community:     c.Community,
				Location:      c.Location,
				Fee:           c.Fee.Value,
				StartDate:     dateText(c.StartDate),
				EndDate:       dateText(c.EndDate),
				StartTime:     timeText(c.StartTime),
				EndTime:       timeText(c.EndTime),
				MinAge:        int64Ptr(c.MinAge.Value),
				MaxAge:        int64Ptr(c.MaxAge.Value),
				DurationHours: c.DurationHours,
				DurationDays:  int64Ptr(c.DurationDays),
				Description:   c.Description,
			}
			if c.Coordinates != nil {
				lat, lng := c.Coordinates.Lat, c.Coordinates.Lng
				row.Lat, row.Lng = &lat, &lng
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteParquet writes the dataset as a single parquet table.
func WriteParquet(path string, dataset models.Dataset) error {
	rows := FlattenDataset(dataset)
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

func dateText(f models.Field[models.ParsedDate]) string {
	if f.Ok() {
		return f.Value.ISO
	}
	return f.Raw
}

func timeText(f models.Field[models.ParsedTime]) string {
	if f.Ok() {
		return f.Value.Formatted
	}
	return f.Raw
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
