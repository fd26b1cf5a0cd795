package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// event or slot does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when a draft fails the
// required-field checks (title, venue, city, type, date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
