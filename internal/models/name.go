package models

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notestore/internal/apperr"
)

// MaxNameBytes bounds a note name so that "<name>.txt" fits common filename limits.
const MaxNameBytes = 200

// Letters, digits, space, '_', '-' and '.'. The first and last characters
// may not be a space or '.'.
var namePattern = regexp.MustCompile(`^[\p{L}\p{N}_-](?:[\p{L}\p{N}_. -]*[\p{L}\p{N}_-])?$`)

// ValidateName reports whether name may be used as a storage key.
// The returned error wraps apperr.ErrInvalidName.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, MaxNameBytes),
		validation.Match(namePattern).Error("must contain only letters, digits, spaces, '_', '-' or '.' and not start or end with a space or '.'"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidName, err)
	}
	return nil
}
