package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aidar/crew-service/internal/service"
)

// AuthHandler выдает токены зарегистрированным пользователям
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest тело запроса POST /auth/login
type LoginRequest struct {
	UID string `json:"uid"`
}

// LoginResponse содержит токен и срок его жизни в секундах
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login обрабатывает POST /auth/login.
// Неизвестный uid отдается как NOT_FOUND через общий маппинг ошибок.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "uid is required")
		return
	}

	token, err := h.authService.Login(r.Context(), uid)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithResult(w, r, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.authService.TokenTTL().Seconds()),
	})
}
