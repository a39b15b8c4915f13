package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/aidar/crew-service/internal/domain"
)

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, Result{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)

	switch kind {
	case domain.KindUnauthenticated:
		RespondWithError(w, r, http.StatusUnauthorized, string(kind), "unauthorized")
	case domain.KindForbidden:
		RespondWithError(w, r, http.StatusForbidden, string(kind), domain.ErrForbidden.Error())
	case domain.KindNotFound, domain.KindConflict, domain.KindNoOp, domain.KindInvalidInput:
		RespondWithError(w, r, statusFor(kind), string(kind), publicMessage(err))
	case domain.KindInconsistentState:
		RespondWithError(w, r, http.StatusInternalServerError, string(kind), domain.ErrInconsistentState.Error())
	default:
		// Детали ошибок хранилища наружу не отдаем
		RespondWithError(w, r, http.StatusInternalServerError, string(domain.KindStoreFailure), "internal server error")
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// publicMessage возвращает текст самой внешней доменной ошибки без деталей хранилища
func publicMessage(err error) string {
	for _, known := range []error{
		domain.ErrUserNotFound, domain.ErrCrewNotFound, domain.ErrNotCrewMember,
		domain.ErrAlreadyInCrew, domain.ErrUserExists, domain.ErrLastAdmin, domain.ErrConcurrentUpdate,
		domain.ErrNotInCrew, domain.ErrAlreadyAdmin, domain.ErrNotAdmin,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
