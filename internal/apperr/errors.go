// Package apperr defines the error taxonomy shared by the store, the HTTP API and
// the MCP tools. Anything not matching one of these sentinels is an internal error.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

// Refinements of ErrInvalidInput so callers can tell which field was rejected.
var (
	ErrInvalidName = fmt.Errorf("%w: note name", ErrInvalidInput)
	ErrEmptyText   = fmt.Errorf("%w: note text is required", ErrInvalidInput)
)
