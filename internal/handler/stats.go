package handler

import (
	"net/http"

	"github.com/aidar/crew-service/internal/service"
)

// StatsHandler обрабатывает эндпоинты статистики
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats обрабатывает GET /stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetStats(r.Context())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, stats)
}

// GetCrewStats обрабатывает GET /stats/crew?crew_id=...
func (h *StatsHandler) GetCrewStats(w http.ResponseWriter, r *http.Request) {
	crewID := r.URL.Query().Get("crew_id")
	if crewID == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "crew_id query parameter is required")
		return
	}

	stats, err := h.statsService.GetCrewStats(r.Context(), crewID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, stats)
}
