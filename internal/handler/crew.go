package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/crew-service/internal/middleware"
	"github.com/aidar/crew-service/internal/service"
)

// CrewHandler обрабатывает эндпоинты crew
type CrewHandler struct {
	crewService *service.CrewService
}

// NewCrewHandler создает новый CrewHandler
func NewCrewHandler(crewService *service.CrewService) *CrewHandler {
	return &CrewHandler{
		crewService: crewService,
	}
}

// CreateCrewRequest представляет тело запроса на создание crew
type CreateCrewRequest struct {
	Name string `json:"name"`
}

// GetCrew обрабатывает GET /crew/{crewID}
func (h *CrewHandler) GetCrew(w http.ResponseWriter, r *http.Request) {
	crew, err := h.crewService.GetCrew(r.Context(), chi.URLParam(r, "crewID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, crew)
}

// CreateCrew обрабатывает POST /crew
func (h *CrewHandler) CreateCrew(w http.ResponseWriter, r *http.Request) {
	var req CreateCrewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	// Валидация запроса
	if req.Name == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}

	crew, err := h.crewService.CreateCrew(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Name)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusCreated, crew)
}

// membershipOp операция админа над участником crew
type membershipOp func(ctx context.Context, callerID, crewID, targetUID string) error

// Promote обрабатывает PUT /crew/{crewID}/promote/{targetUID}
func (h *CrewHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.crewService.PromoteMember)
}

// Demote обрабатывает PUT /crew/{crewID}/demote/{targetUID}
func (h *CrewHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.crewService.DemoteAdmin)
}

// Add обрабатывает PUT /crew/{crewID}/add/{targetUID}
func (h *CrewHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.crewService.AddMember)
}

// Remove обрабатывает PUT /crew/{crewID}/remove/{targetUID}
func (h *CrewHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.handleMembership(w, r, h.crewService.RemoveMember)
}

// Leave обрабатывает PUT /crew/leave
func (h *CrewHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.crewService.LeaveCrew(r.Context(), middleware.GetUserIDFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, nil)
}

func (h *CrewHandler) handleMembership(w http.ResponseWriter, r *http.Request, op membershipOp) {
	crewID := chi.URLParam(r, "crewID")
	targetUID := chi.URLParam(r, "targetUID")
	if crewID == "" || targetUID == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "crewID and targetUID are required")
		return
	}

	callerID := middleware.GetUserIDFromContext(r.Context())
	if err := op(r.Context(), callerID, crewID, targetUID); err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, nil)
}
