package api

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"
)

const (
	uploadFormFile = "UploadForm.html"
	openAPIFile    = "openapi.yaml"
)

// StaticHandler serves the upload form and the API description.
type StaticHandler struct {
	assets fs.FS
}

// NewStaticHandler creates a handler reading from assets.
func NewStaticHandler(assets fs.FS) *StaticHandler {
	return &StaticHandler{assets: assets}
}

func (h *StaticHandler) serve(w http.ResponseWriter, name, contentType string) {
	data, err := h.read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeText(w, http.StatusNotFound, msgNotFound)
			return
		}
		slog.Error("read asset failed", slog.String("asset", name), slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *StaticHandler) read(name string) ([]byte, error) {
	if h.assets == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(h.assets, name)
}

// UploadForm handles GET /UploadForm.html.
func (h *StaticHandler) UploadForm(w http.ResponseWriter, _ *http.Request) {
	h.serve(w, uploadFormFile, "text/html; charset=utf-8")
}

// OpenAPIYAML handles GET /docs/openapi.yaml.
func (h *StaticHandler) OpenAPIYAML(w http.ResponseWriter, _ *http.Request) {
	h.serve(w, openAPIFile, "application/yaml")
}

// OpenAPIJSON handles GET /docs/openapi.json, converting the YAML document.
func (h *StaticHandler) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	data, err := h.read(openAPIFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeText(w, http.StatusNotFound, msgNotFound)
			return
		}
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Error("parse openapi failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, jsonCompatible(doc))
}

// jsonCompatible rewrites map[any]any nodes, which encoding/json rejects,
// into map[string]any.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonCompatible(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = jsonCompatible(val)
		}
		return t
	default:
		return v
	}
}
