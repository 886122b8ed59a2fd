package handlers

import (
	"net/http"
	"strings"

	"github.com/parkrec/campdata/internal/models"
)

// SheetSummary describes one sheet without its records
type SheetSummary struct {
	Name     string               `json:"name"`
	Metadata models.SheetMetadata `json:"metadata"`
}

func (h *Handler) HandleSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataset, ok := h.getDatasetOrError(w)
	if !ok {
		return
	}

	sheets := make([]SheetSummary, 0, len(dataset))
	for _, name := range dataset.SheetNames() {
		sheets = append(sheets, SheetSummary{Name: name, Metadata: dataset[name].Metadata})
	}
	h.writeJSON(w, sheets)
}

// HandleSheetDetail returns one sheet's records, optionally filtered by the
// category, community and location query parameters.
func (h *Handler) HandleSheetDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dataset, ok := h.getDatasetOrError(w)
	if !ok {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/sheets/")
	sheet, exists := dataset[name]
	if !exists {
		h.writeError(w, "Sheet not found", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	category, community, location := q.Get("category"), q.Get("community"), q.Get("location")
	if category == "" && community == "" && location == "" {
		h.writeJSON(w, sheet)
		return
	}

	camps := make([]models.CampRecord, 0, len(sheet.Camps))
	for _, c := range sheet.Camps {
		if matches(c.Category, category) && matches(c.Community, community) && matches(c.Location, location) {
			camps = append(camps, c)
		}
	}
	h.writeJSON(w, models.SheetData{Camps: camps, Metadata: sheet.Metadata})
}

func matches(value, filter string) bool {
	return filter == "" || strings.EqualFold(value, filter)
}
