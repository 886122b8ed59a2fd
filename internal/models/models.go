package models

import (
	"errors"
	"time"
)

// ErrNoHeaderRow is returned for a sheet whose header row cannot be located.
var ErrNoHeaderRow = errors.New("no header row found")

// CampRecord represents one offered camp session
type CampRecord struct {
	Title          string            `json:"title"`
	Category       string            `json:"category,omitempty"`
	Code           string            `json:"code,omitempty"`
	Community      string            `json:"community,omitempty"`
	Location       string            `json:"location,omitempty"`
	Fee            Field[float64]    `json:"fee,omitzero"`
	ResidentFee    Field[float64]    `json:"residentFee,omitzero"`
	NonResidentFee Field[float64]    `json:"nonResidentFee,omitzero"`
	StartDate      Field[ParsedDate] `json:"startDate,omitzero"`
	EndDate        Field[ParsedDate] `json:"endDate,omitzero"`
	StartTime      Field[ParsedTime] `json:"startTime,omitzero"`
	EndTime        Field[ParsedTime] `json:"endTime,omitzero"`
	MinAge         Field[int]        `json:"minAge,omitzero"`
	MaxAge         Field[int]        `json:"maxAge,omitzero"`
	DateRange      string            `json:"dates,omitempty"`
	Status         string            `json:"status,omitempty"`
	DurationHours  *float64          `json:"durationHours,omitempty"`
	DurationDays   *int              `json:"durationDays,omitempty"`
	Coordinates    *Coordinate       `json:"coordinates,omitempty"`
	Description    string            `json:"description,omitempty"`
	Extra          map[string]string `json:"-"` // written as top-level keys
}

// ParsedDate is a calendar date read from an M/D/Y cell
type ParsedDate struct {
	ISO       string `json:"iso"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	DayOfWeek int    `json:"dayOfWeek"` // 0 = Sunday
	Weekday   string `json:"weekday"`
	MonthName string `json:"monthName"`
}

// Time returns the date at midnight UTC.
func (d ParsedDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// ParsedTime is a wall-clock time read from an "H:MM AM" cell
type ParsedTime struct {
	Formatted            string `json:"formatted"`
	Hour                 int    `json:"hour"`
	Minute               int    `json:"minute"`
	MinutesSinceMidnight int    `json:"minutesSinceMidnight"`
	Period               string `json:"period"`
}

// Coordinate is a WGS84 point
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CampDescription is one candidate parsed from the extracted brochure text
type CampDescription struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Codes       []string `json:"codes,omitempty"`
}

// SheetMetadata carries the filter vocabularies for one sheet
type SheetMetadata struct {
	Categories  []string  `json:"categories"`
	Communities []string  `json:"communities"`
	Locations   []string  `json:"locations"`
	DateRanges  []string  `json:"dateRanges"`
	TotalCount  int       `json:"totalCount"`
	GeneratedAt time.Time `json:"generatedAt"`
	RunID       string    `json:"runId,omitempty"`
}

// SheetData holds the records and metadata of one workbook sheet
type SheetData struct {
	Camps    []CampRecord  `json:"camps"`
	Metadata SheetMetadata `json:"metadata"`
}

// Dataset is the pipeline output keyed by sheet name
type Dataset map[string]*SheetData
