package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS создает CORS middleware для списка разрешенных источников
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-Id",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}

	// С источником "*" credentials запрещены
	for _, origin := range allowedOrigins {
		if origin == "*" {
			options.AllowCredentials = false
			break
		}
	}

	return cors.Handler(options)
}
