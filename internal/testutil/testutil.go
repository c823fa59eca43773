// Package testutil provides shared test helpers for setting up cache
// directories and journals.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/notestore/internal/journal"
	"github.com/starford/notestore/internal/storage"
)

// TestJournal creates a temporary SQLite journal that is automatically closed.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary cache directory with a storage.FS on top.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
