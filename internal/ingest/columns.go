package ingest

import (
	"github.com/parkrec/campdata/internal/models"
)

// ColumnFunc stores one cell value on a record.
type ColumnFunc func(rec *models.CampRecord, value string)

// ColumnTable maps an exact header name to the function that classifies its cells.
// Headers missing from the table are kept as camel-cased text in CampRecord.Extra
// and written as top-level keys of the record.
type ColumnTable map[string]ColumnFunc

// DefaultColumns returns the dispatch table for the parks and recreation export.
func DefaultColumns() ColumnTable {
	return ColumnTable{
		HeaderTitle:        func(r *models.CampRecord, v string) { r.Title = v },
		"Category":         func(r *models.CampRecord, v string) { r.Category = v },
		"Code":             func(r *models.CampRecord, v string) { r.Code = v },
		"Activity Code":    func(r *models.CampRecord, v string) { r.Code = v },
		"Community":        func(r *models.CampRecord, v string) { r.Community = v },
		"Location":         func(r *models.CampRecord, v string) { r.Location = v },
		"Dates":            func(r *models.CampRecord, v string) { r.DateRange = v },
		"Status":           func(r *models.CampRecord, v string) { r.Status = v },
		"Start Date":       func(r *models.CampRecord, v string) { r.StartDate = dateField(v) },
		"End Date":         func(r *models.CampRecord, v string) { r.EndDate = dateField(v) },
		"Start Time":       func(r *models.CampRecord, v string) { r.StartTime = timeField(v) },
		"End Time":         func(r *models.CampRecord, v string) { r.EndTime = timeField(v) },
		"Fee":              func(r *models.CampRecord, v string) { r.Fee = currencyField(v) },
		"Resident Fee":     func(r *models.CampRecord, v string) { r.ResidentFee = currencyField(v) },
		"Non-Resident Fee": func(r *models.CampRecord, v string) { r.NonResidentFee = currencyField(v) },
		"Min Age":          func(r *models.CampRecord, v string) { r.MinAge = ageField(v) },
		"Max Age":          func(r *models.CampRecord, v string) { r.MaxAge = ageField(v) },
	}
}

func dateField(v string) models.Field[models.ParsedDate] {
	d, err := ParseDate(v)
	if err != nil {
		return models.Unparsed[models.ParsedDate](v)
	}
	return models.Parsed(d)
}

func timeField(v string) models.Field[models.ParsedTime] {
	t, err := ParseTime(v)
	if err != nil {
		return models.Unparsed[models.ParsedTime](v)
	}
	return models.Parsed(t)
}

func currencyField(v string) models.Field[float64] {
	amount, err := ParseCurrency(v)
	if err != nil {
		return models.Unparsed[float64](v)
	}
	return models.Parsed(amount)
}

func ageField(v string) models.Field[int] {
	age, err := ParseAge(v)
	if err != nil {
		return models.Unparsed[int](v)
	}
	return models.Parsed(age)
}
