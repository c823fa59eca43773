package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/notestore/internal/apperr"
	"github.com/starford/notestore/internal/models"
)

// Ext is the suffix every note file carries.
const Ext = ".txt"

const (
	tmpPattern   = ".notestore-tmp-*"
	readDirBatch = 64
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the cache directory
}

// EnsureDir creates root and any missing parents.
func EnsureDir(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("storage: create cache dir: %w", err)
	}
	return nil
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute cache directory.
func (f *FS) Root() string { return f.root }

// NoteName recovers the note name from a directory entry name. Temp files,
// hidden files and files without the note suffix are rejected.
func NoteName(filename string) (string, bool) {
	if strings.HasPrefix(filename, ".") || !strings.HasSuffix(filename, Ext) {
		return "", false
	}
	name := strings.TrimSuffix(filename, Ext)
	if name == "" {
		return "", false
	}
	return name, true
}

// path maps a note name to its file and rejects anything that would land
// outside the root.
func (f *FS) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("storage: %w: %q", apperr.ErrInvalidName, name)
	}
	abs := filepath.Join(f.root, name+Ext)
	if filepath.Dir(abs) != f.root {
		return "", fmt.Errorf("storage: %w: escapes cache dir: %q", apperr.ErrInvalidName, name)
	}
	return abs, nil
}

// Exists reports whether the note file is present.
func (f *FS) Exists(name string) (bool, error) {
	abs, err := f.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return true, nil
}

// Read returns the raw bytes of a note.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	// CreateTemp uses 0600; notes are ordinary files.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a note file.
func (f *FS) Delete(name string) error {
	abs, err := f.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// All reads the directory in batches and yields each note as it is read, so
// memory stays bounded by the largest single note. Files removed between
// enumeration and read are skipped.
func (f *FS) All() iter.Seq2[models.Note, error] {
	return func(yield func(models.Note, error) bool) {
		dir, err := os.Open(f.root)
		if err != nil {
			yield(models.Note{}, fmt.Errorf("storage: open cache dir: %w", err))
			return
		}
		defer dir.Close()

		for {
			entries, readErr := dir.ReadDir(readDirBatch)
			for _, e := range entries {
				if !e.Type().IsRegular() {
					continue
				}
				name, ok := NoteName(e.Name())
				if !ok {
					continue
				}
				data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					if !yield(models.Note{}, fmt.Errorf("storage: read %s: %w", name, err)) {
						return
					}
					continue
				}
				if !yield(models.Note{Name: name, Text: string(data)}, nil) {
					return
				}
			}
			if errors.Is(readErr, io.EOF) {
				return
			}
			if readErr != nil {
				yield(models.Note{}, fmt.Errorf("storage: list: %w", readErr))
				return
			}
		}
	}
}
