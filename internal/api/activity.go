package api

import (
	"log/slog"
	"net/http"
	"strconv"
)

// ActivityHandler exposes the mutation journal.
type ActivityHandler struct {
	src ActivitySource
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(src ActivitySource) *ActivityHandler {
	return &ActivityHandler{src: src}
}

// Recent handles GET /activity?limit=N.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeText(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	items, err := h.src.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("list activity failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
