package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/parkrec/campdata/internal/models"
)

// Handler serves a generated dataset file, reloading it when it changes on disk.
type Handler struct {
	dataPath string

	mu      sync.RWMutex
	dataset models.Dataset
	modTime time.Time
}

func New(dataPath string) *Handler {
	return &Handler{
		dataPath: dataPath,
	}
}

// Dataset returns the current dataset, re-reading the file if it was rewritten.
func (h *Handler) Dataset() (models.Dataset, error) {
	info, err := os.Stat(h.dataPath)
	if err != nil {
		return nil, fmt.Errorf("dataset unavailable: %w", err)
	}

	h.mu.RLock()
	if h.dataset != nil && info.ModTime().Equal(h.modTime) {
		defer h.mu.RUnlock()
		return h.dataset, nil
	}
	h.mu.RUnlock()

	dataset, err := models.LoadDataset(h.dataPath)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.dataset = dataset
	h.modTime = info.ModTime()
	h.mu.Unlock()

	slog.Info("Loaded dataset", "path", h.dataPath, "sheets", len(dataset))
	return dataset, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) getDatasetOrError(w http.ResponseWriter) (models.Dataset, bool) {
	dataset, err := h.Dataset()
	if err != nil {
		h.writeError(w, "Dataset not available: "+err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return dataset, true
}
