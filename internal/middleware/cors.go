// Package middleware provides the HTTP middleware for the gig board API:
// request logging, CORS and request body limits.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that lets the browser front end call
// the API from allowedOrigins. Each entry must be a full origin (scheme +
// host, no trailing slash). Allowed methods cover the events API;
// Content-Disposition is exposed so export downloads keep their file name.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	})
	return c.Handler
}
