// Package api implements the note store HTTP surface using chi.
package api

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notestore/internal/models"
	"github.com/starford/notestore/internal/noteservice"
)

//go:embed web
var webFS embed.FS

// Assets returns the embedded upload form and API documentation.
func Assets() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

// ActivitySource lists recent store mutations.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

// NewRouter creates a chi router with every route mounted.
// assets supplies UploadForm.html and openapi.yaml; a missing file yields 404.
// activity and events are optional: when nil their routes are not mounted.
func NewRouter(svc *noteservice.Service, assets fs.FS, activity ActivitySource, events http.Handler) chi.Router {
	h := NewHandler(svc)
	sh := NewStaticHandler(assets)

	r := chi.NewRouter()

	// Notes.
	r.Post("/write", h.CreateNote)
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{name}", h.GetNote)
	r.Put("/notes/{name}", h.UpdateNote)
	r.Delete("/notes/{name}", h.DeleteNote)

	// Static collaborators.
	r.Get("/UploadForm.html", sh.UploadForm)
	r.Get("/docs/openapi.yaml", sh.OpenAPIYAML)
	r.Get("/docs/openapi.json", sh.OpenAPIJSON)

	// Health.
	r.Get("/health/live", Live)
	r.Get("/health/ready", Ready(svc.Root()))

	if activity != nil {
		r.Get("/activity", NewActivityHandler(activity).Recent)
	}
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
