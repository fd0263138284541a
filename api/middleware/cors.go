package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"http://localhost:5173", // vite dev server
}

// CORS applies the allowed origin policy; an empty list falls back to the local dev origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
