// Package storage maps notes onto files in the cache directory.
package storage

import (
	"iter"

	"github.com/starford/notestore/internal/models"
)

// Provider is the interface for note file operations. Names are bare note
// names; the provider owns the mapping to "<root>/<name>.txt".
type Provider interface {
	// Root returns the absolute cache directory.
	Root() string
	// Exists reports whether a note file for name is present.
	Exists(name string) (bool, error)
	// Read returns the raw bytes of the note. Wraps os.ErrNotExist when absent.
	Read(name string) ([]byte, error)
	// Write atomically replaces the note content, creating the file if needed.
	Write(name string, content []byte) error
	// Delete removes the note file. Wraps os.ErrNotExist when absent.
	Delete(name string) error
	// All lazily enumerates every note in directory order.
	All() iter.Seq2[models.Note, error]
}
