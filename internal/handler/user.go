package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/crew-service/internal/middleware"
	"github.com/aidar/crew-service/internal/service"
)

// UserHandler обрабатывает эндпоинты пользователей
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// AddUserRequest представляет тело запроса на регистрацию пользователя
type AddUserRequest struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// AddUser обрабатывает POST /users/add
func (h *UserHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		UID:      req.UID,
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusCreated, user)
}

// Me обрабатывает GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, user)
}

// GetUser обрабатывает GET /users/{uid}, отдает только публичную часть профиля
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByUID(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, user.Summary())
}
