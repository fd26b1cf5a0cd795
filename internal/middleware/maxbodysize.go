package middleware

import (
	"net/http"
)

// NewMaxBodySizeHandler returns a middleware that limits incoming request
// bodies to limit bytes.
//   - A declared Content-Length over the limit is rejected with 413 before
//     the next handler runs.
//   - Otherwise the body is wrapped in http.MaxBytesReader, so a handler
//     reading past the limit gets an *http.MaxBytesError.
//
// A limit of zero or less disables the check.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":{"code":"payload_too_large","message":"request body too large"}}`))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
