package core

import (
	"errors"
	"net/http"
)

// AppError is a terminal business error carrying the HTTP status it maps to.
// Auth operations return these as values; the router translates them at the
// boundary. Anything that is not an AppError surfaces as a 500.
type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	// ErrConflict is returned when the username or email is already taken.
	// A single message covers both fields so responses do not reveal which
	// one collided.
	ErrConflict = &AppError{Status: http.StatusBadRequest, Code: "CONFLICT", Message: "Username already exists"}

	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike, with identical text in both cases.
	ErrInvalidCredentials = &AppError{Status: http.StatusBadRequest, Code: "INVALID_CREDENTIALS", Message: "Invalid username or password"}

	// ErrUnauthorized is returned when the bearer token is missing or
	// resolves to no user.
	ErrUnauthorized = &AppError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Unauthorized"}
)

// ErrNotFound is the store-level sentinel for single-row lookups that matched
// nothing. The auth service maps it to the appropriate AppError.
var ErrNotFound = errors.New("record not found")
