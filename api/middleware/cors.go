package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware with a permissive origin policy. The API is consumed
// by internal tools across changing hosts, so the allow-list is open.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}).Handler
}
