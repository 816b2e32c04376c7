package api

import (
	"net/http"

	"github.com/okian/sportlife/internal/domain/model"
)

// HistoryHandler serves retired competitors and past champions.
type HistoryHandler struct {
	deps HistoryReader
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryReader) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleRetired handles GET /retired.
func (h *HistoryHandler) HandleRetired(w http.ResponseWriter, _ *http.Request) {
	retired := h.deps.Retired()
	if retired == nil {
		retired = []model.Retired{}
	}
	writeJSON(w, http.StatusOK, retired)
}

// HandleChampions handles GET /champions.
func (h *HistoryHandler) HandleChampions(w http.ResponseWriter, _ *http.Request) {
	records := h.deps.Champions()
	if records == nil {
		records = []model.SeasonRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
