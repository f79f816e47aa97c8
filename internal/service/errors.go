// Package service provides business logic for the travel platform.
package service

import (
	"errors"
	"fmt"
)

// Typed results for expected, routine failures. Handlers translate
// these into status codes; anything else is a store or internal
// failure and maps to a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")

	// ErrNotEnabled means the trip has no BorderBuddy yet. It matches
	// ErrNotFound so callers that only distinguish 404s keep working.
	ErrNotEnabled = fmt.Errorf("%w: borderbuddy not enabled", ErrNotFound)
)
