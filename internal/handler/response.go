package handler

import (
	"net/http"

	"github.com/go-chi/render"
)

// Result представляет структурированный ответ { result, data?, error? }
type Result struct {
	Success bool         `json:"result"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// RespondWithResult отправляет успешный результат, data может быть nil
func RespondWithResult(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	RespondWithJSON(w, r, statusCode, Result{Success: true, Data: data})
}
