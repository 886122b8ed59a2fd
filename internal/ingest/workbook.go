// Package ingest turns a parks and recreation workbook export into typed camp records.
package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/xuri/excelize/v2"
)

const (
	// HeaderTitle is the column title that marks a sheet's header row.
	HeaderTitle = "Camp Title"

	headerScanRows = 15
	headerScanCols = 6
	minRowFields   = 3
)

var placeholderHeader = regexp.MustCompile(`^(__EMPTY(_\d+)?|Unnamed: \d+)$`)

// Ingestor reads workbooks into a Dataset.
type Ingestor struct {
	Columns ColumnTable
	Clock   clockwork.Clock
	RunID   string
	metrics *observability.Metrics
}

// New returns an Ingestor using the default column table.
func New(clock clockwork.Clock, runID string, metrics *observability.Metrics) *Ingestor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Ingestor{
		Columns: DefaultColumns(),
		Clock:   clock,
		RunID:   runID,
		metrics: metrics,
	}
}

// IngestFile opens an .xlsx workbook and ingests every sheet.
func (in *Ingestor) IngestFile(path string) (models.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Unable to close workbook", "path", path, "err", err)
		}
	}()

	return in.Ingest(f)
}

// Ingest reads every sheet of an open workbook. Sheets without a header row
// are skipped with a warning.
func (in *Ingestor) Ingest(f *excelize.File) (models.Dataset, error) {
	dataset := models.Dataset{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		data, err := in.IngestRows(sheet, rows)
		if err != nil {
			slog.Warn("Skipping sheet", "sheet", sheet, "err", err)
			in.metrics.SheetsSkipped.Inc()
			continue
		}
		dataset[sheet] = data
	}
	return dataset, nil
}

// IngestRows classifies the rows of one sheet.
func (in *Ingestor) IngestRows(sheet string, rows [][]string) (*models.SheetData, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, models.ErrNoHeaderRow)
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	camps := []models.CampRecord{}
	seenCodes := map[string]int{}
	for i, row := range rows[headerIdx+1:] {
		rec, ok := in.buildRecord(headers, row)
		if !ok {
			continue
		}

		if rec.Code != "" {
			if first, dup := seenCodes[rec.Code]; dup {
				slog.Warn("Duplicate camp code", "sheet", sheet, "code", rec.Code, "row", headerIdx+i+2, "first_row", first)
			} else {
				seenCodes[rec.Code] = headerIdx + i + 2
			}
		}
		camps = append(camps, rec)
	}

	in.metrics.RecordsIngested.WithLabelValues(sheet).Add(float64(len(camps)))
	slog.Info("Ingested sheet", "sheet", sheet, "header_row", headerIdx+1, "records", len(camps))

	return &models.SheetData{
		Camps:    camps,
		Metadata: BuildMetadata(camps, in.Clock.Now().UTC(), in.RunID),
	}, nil
}

// findHeaderRow returns the index of the first row that carries HeaderTitle
// within the scanned window, or -1.
func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		for j := 0; j < len(rows[i]) && j < headerScanCols; j++ {
			if strings.TrimSpace(rows[i][j]) == HeaderTitle {
				return i
			}
		}
	}
	return -1
}

func isPlaceholder(header string) bool {
	return header == "" || placeholderHeader.MatchString(header)
}

func (in *Ingestor) buildRecord(headers []string, row []string) (models.CampRecord, bool) {
	type cell struct {
		header string
		value  string
	}

	cells := make([]cell, 0, len(row))
	for i, value := range row {
		if i >= len(headers) || isPlaceholder(headers[i]) {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		cells = append(cells, cell{header: headers[i], value: value})
	}
	if len(cells) < minRowFields {
		return models.CampRecord{}, false
	}

	var rec models.CampRecord
	for _, c := range cells {
		if fn, ok := in.Columns[c.header]; ok {
			fn(&rec, c.value)
			continue
		}
		if rec.Extra == nil {
			rec.Extra = map[string]string{}
		}
		rec.Extra[CamelCase(c.header)] = c.value
	}
	deriveDurations(&rec)
	return rec, true
}

func deriveDurations(rec *models.CampRecord) {
	if rec.StartTime.Ok() && rec.EndTime.Ok() {
		hours := float64(rec.EndTime.Value.MinutesSinceMidnight-rec.StartTime.Value.MinutesSinceMidnight) / 60
		rec.DurationHours = &hours
	}
	if rec.StartDate.Ok() && rec.EndDate.Ok() {
		days := int(rec.EndDate.Value.Time().Sub(rec.StartDate.Value.Time()).Hours()/24) + 1
		rec.DurationDays = &days
	}
}
