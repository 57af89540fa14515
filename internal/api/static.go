package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yegors/spotten/pkg/logger"
)

// StaticFileHandler serves the preview UI and the dropzone maps
type StaticFileHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticFileHandler creates a new static file handler rooted at staticDir
func NewStaticFileHandler(staticDir string, logger *logger.Logger) *StaticFileHandler {
	root, err := filepath.Abs(staticDir)
	if err != nil {
		root = filepath.Clean(staticDir)
	}
	return &StaticFileHandler{
		root:   root,
		logger: logger.Named("static-handler"),
	}
}

// ServeHTTP serves a file below the root. Paths without an extension that match no file fall
// back to index.html so the UI can use its own routes.
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// path.Clean on a rooted path removes every "..", so the result stays below root
	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}
	fullPath := filepath.Join(h.root, filepath.FromSlash(rel))

	info, err := os.Stat(fullPath)
	switch {
	case err == nil && info.IsDir():
		fullPath = filepath.Join(fullPath, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			h.logger.Debug("Directory listing not allowed", logger.String("path", rel))
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	case os.IsNotExist(err) && path.Ext(rel) == "":
		fullPath = filepath.Join(h.root, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			http.NotFound(w, r)
			return
		}
	case os.IsNotExist(err):
		h.logger.Debug("File not found", logger.String("path", rel))
		http.NotFound(w, r)
		return
	case err != nil:
		h.logger.Error("Failed to stat file", logger.Error(err), logger.String("path", fullPath))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Pages must pick up a new UI immediately, maps and scripts can be cached briefly
	if strings.HasSuffix(fullPath, ".html") {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=300")
	}

	http.ServeFile(w, r, fullPath)
}
