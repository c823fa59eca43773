// Package noteservice implements the note store operations on top of a
// storage.Provider: validation, existence checks, per-name mutual exclusion
// and activity recording.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notestore/internal/apperr"
	"github.com/starford/notestore/internal/checksum"
	"github.com/starford/notestore/internal/models"
	"github.com/starford/notestore/internal/storage"
)

// Recorder receives one entry per successful mutation.
type Recorder interface {
	Record(ctx context.Context, a models.Activity) error
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder attaches an activity recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service is the note store. The cache directory is the only source of truth:
// every call goes to the provider.
type Service struct {
	store    storage.Provider
	recorder Recorder
	logger   *slog.Logger
	locks    *nameLocks
}

// NewService creates a new note service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		locks:  newNameLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new note. It fails with ErrAlreadyExists if the name is taken.
func (s *Service) Create(ctx context.Context, name, text string) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}
	if text == "" {
		return apperr.ErrEmptyText
	}

	unlock := s.locks.lock(name)
	defer unlock()

	exists, err := s.store.Exists(name)
	if err != nil {
		return fmt.Errorf("noteservice: create %q: %w", name, err)
	}
	if exists {
		return fmt.Errorf("note %q: %w", name, apperr.ErrAlreadyExists)
	}
	content := []byte(text)
	if err := s.store.Write(name, content); err != nil {
		return fmt.Errorf("noteservice: create %q: %w", name, err)
	}
	s.record(ctx, models.OpCreate, name, content)
	return nil
}

// Get returns the full current content of a note.
func (s *Service) Get(_ context.Context, name string) (models.Note, error) {
	if err := models.ValidateName(name); err != nil {
		return models.Note{}, err
	}
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Note{}, fmt.Errorf("note %q: %w", name, apperr.ErrNotFound)
		}
		return models.Note{}, fmt.Errorf("noteservice: get %q: %w", name, err)
	}
	return models.Note{Name: name, Text: string(data)}, nil
}

// Update replaces the content of an existing note. It never creates a note.
// Existence is checked before the replacement text.
func (s *Service) Update(ctx context.Context, name, text string) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.lock(name)
	defer unlock()

	exists, err := s.store.Exists(name)
	if err != nil {
		return fmt.Errorf("noteservice: update %q: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("note %q: %w", name, apperr.ErrNotFound)
	}
	if text == "" {
		return apperr.ErrEmptyText
	}
	content := []byte(text)
	if err := s.store.Write(name, content); err != nil {
		return fmt.Errorf("noteservice: update %q: %w", name, err)
	}
	s.record(ctx, models.OpUpdate, name, content)
	return nil
}

// Delete removes a note. Deleting an absent note is ErrNotFound.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := models.ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.lock(name)
	defer unlock()

	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("note %q: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("noteservice: delete %q: %w", name, err)
	}
	s.record(ctx, models.OpDelete, name, nil)
	return nil
}

// All lazily yields every note in directory order. Files whose stem is not a
// valid note name are skipped. Iteration stops once ctx is done.
func (s *Service) All(ctx context.Context) iter.Seq2[models.Note, error] {
	return func(yield func(models.Note, error) bool) {
		for n, err := range s.store.All() {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(models.Note{}, ctxErr)
				return
			}
			if err != nil {
				if !yield(models.Note{}, fmt.Errorf("noteservice: list: %w", err)) {
					return
				}
				continue
			}
			if models.ValidateName(n.Name) != nil {
				continue
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// List materialises All. The result is never nil.
func (s *Service) List(ctx context.Context) ([]models.Note, error) {
	out := []models.Note{}
	for n, err := range s.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Root returns the cache directory backing the service.
func (s *Service) Root() string {
	return s.store.Root()
}

func (s *Service) record(ctx context.Context, op, name string, content []byte) {
	if s.recorder == nil {
		return
	}
	a := models.Activity{
		ID:   uuid.NewString(),
		Op:   op,
		Name: name,
		Size: len(content),
		At:   time.Now().UTC(),
	}
	if content != nil {
		a.Checksum = checksum.Sum(content)
	}
	if err := s.recorder.Record(ctx, a); err != nil {
		s.logger.Warn("activity record failed",
			slog.String("op", op),
			slog.String("name", name),
			slog.String("error", err.Error()))
	}
}
