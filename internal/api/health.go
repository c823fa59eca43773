package api

import (
	"net/http"
	"os"
)

// Live handles GET /health/live.
func Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns a handler for GET /health/ready that fails while the cache
// directory is missing or not a directory.
func Ready(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
