package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/notestore/internal/apperr"
)

func TestValidateName(t *testing.T) {
	valid := []string{"todo", "buy milk", "2024-01-01", "notes.v2", "нотатка", "a_b-c", "x", "-", "_draft_"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), "name %q", name)
	}

	invalid := []string{
		"",
		".",
		"..",
		".hidden",
		"../etc/passwd",
		"a/b",
		`a\b`,
		"nul\x00byte",
		"tab\tname",
		" ",
		" x",
		"x ",
		"x.",
		"a%41",
		strings.Repeat("x", MaxNameBytes+1),
	}
	for _, name := range invalid {
		err := ValidateName(name)
		assert.ErrorIs(t, err, apperr.ErrInvalidName, "name %q", name)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, "name %q", name)
	}
}
