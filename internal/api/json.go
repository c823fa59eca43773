package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// Plain-text bodies returned by the note routes.
const (
	msgCreated       = "Note created"
	msgDeleted       = "Note deleted"
	msgRequired      = "Note name and text are required"
	msgExists        = "Note already exists"
	msgNotFound      = "Not found"
	msgTextRequired  = "Error: Text is required"
	msgInvalidName   = "Invalid note name"
	msgInternal      = "Internal server error"
	msgBodyTooLarge  = "Request body too large"
	msgBadRequestRaw = "Failed to read request body"
)

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
