package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iamarketings/Operator/internal/config"
	"github.com/iamarketings/Operator/internal/repo"
)

type recordingFinder interface {
	RecordingPath(ctx context.Context, cdrID string) (string, error)
}

// RecordingHandler streams the recording attached to the CDR in the path.
// It answers 503 while recordings.base_path is unset.
func RecordingHandler(cfg *config.Config, store recordingFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Recordings.BasePath == "" {
			slog.Error("recordings.base_path is not configured", "path", r.URL.Path)
			http.Error(w, "recordings not configured", http.StatusServiceUnavailable)
			return
		}

		path, err := store.RecordingPath(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeRepoError(w, r, err)
			return
		}

		base := filepath.Clean(cfg.Recordings.BasePath)
		fullPath := filepath.Join(base, path)
		if !strings.HasPrefix(fullPath, base+string(filepath.Separator)) {
			slog.Warn("recording path escapes base_path", "cdr_id", chi.URLParam(r, "id"), "path", path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		f, err := os.Open(fullPath)
		if err != nil {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}
		http.ServeContent(w, r, filepath.Base(fullPath), info.ModTime(), f)
	}
}
