package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing departure port, ended_at before started_at).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrComputation is returned by the nav package when a derived metric cannot
// be computed (non-finite intermediate values). Callers that save events or
// voyages log it and keep the previously stored values.
var ErrComputation = errors.New("metrics computation failed")
