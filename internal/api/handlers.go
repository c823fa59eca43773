package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notestore/internal/apperr"
	"github.com/starford/notestore/internal/checksum"
	"github.com/starford/notestore/internal/noteservice"
)

const maxBodyBytes = 10 << 20

// Handler holds the note route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// noteName extracts {name} from the URL. chi routes on RawPath when the
// request carried escapes that Path cannot represent (such as %2F); only then
// is the parameter still encoded and decoded here, exactly once.
func noteName(r *http.Request) string {
	param := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return param
	}
	decoded, err := url.PathUnescape(param)
	if err != nil {
		return param
	}
	return decoded
}

// etagMatches implements the weak comparison If-None-Match uses for GET.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// fail maps a service error onto the plain-text status contract.
// Internal errors are logged and reported without detail.
func fail(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidName):
		writeText(w, http.StatusBadRequest, msgInvalidName)
	case errors.Is(err, apperr.ErrNotFound):
		writeText(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeText(w, http.StatusBadRequest, msgExists)
	default:
		slog.Error(op+" note failed", slog.String("name", name), slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
	}
}

// CreateNote handles POST /write with form fields note_name and note,
// either urlencoded or multipart.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if tooLarge(err) {
			writeText(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		writeText(w, http.StatusBadRequest, msgRequired)
		return
	}

	name := r.PostFormValue("note_name")
	text := r.PostFormValue("note")
	if name == "" || text == "" {
		writeText(w, http.StatusBadRequest, msgRequired)
		return
	}

	if err := h.svc.Create(r.Context(), name, text); err != nil {
		fail(w, "create", name, err)
		return
	}
	writeText(w, http.StatusCreated, msgCreated)
}

// GetNote handles GET /notes/{name}: the raw note content.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	name := noteName(r)
	note, err := h.svc.Get(r.Context(), name)
	if err != nil {
		fail(w, "get", name, err)
		return
	}
	etag := checksum.ETag([]byte(note.Text))
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeText(w, http.StatusOK, note.Text)
}

// UpdateNote handles PUT /notes/{name} with the raw replacement text as body.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	name := noteName(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			writeText(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		writeText(w, http.StatusBadRequest, msgBadRequestRaw)
		return
	}

	if err := h.svc.Update(r.Context(), name, string(body)); err != nil {
		if errors.Is(err, apperr.ErrEmptyText) {
			writeText(w, http.StatusBadRequest, msgTextRequired)
			return
		}
		fail(w, "update", name, err)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("Note %q updated successfully", name))
}

// DeleteNote handles DELETE /notes/{name}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	name := noteName(r)
	if err := h.svc.Delete(r.Context(), name); err != nil {
		fail(w, "delete", name, err)
		return
	}
	writeText(w, http.StatusOK, msgDeleted)
}

// ListNotes handles GET /notes. The JSON array is written one element at a
// time so the full collection is never held in memory. A failure after the
// first byte aborts the connection rather than sending a truncated array.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	next, stop := iter.Pull2(h.svc.All(r.Context()))
	defer stop()

	note, err, ok := next()
	if ok && err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "[")

	enc := json.NewEncoder(w)
	for i := 0; ok; i++ {
		if err != nil {
			slog.Error("list notes aborted", slog.Int("written", i), slog.String("error", err.Error()))
			panic(http.ErrAbortHandler)
		}
		if i > 0 {
			_, _ = io.WriteString(w, ",")
		}
		if encErr := enc.Encode(note); encErr != nil {
			slog.Warn("list notes write failed", slog.String("error", encErr.Error()))
			return
		}
		note, err, ok = next()
	}
	_, _ = io.WriteString(w, "]\n")
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
