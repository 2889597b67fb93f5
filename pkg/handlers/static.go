package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"
)

// StaticHandler serves the single-page front end. Paths that do not name a
// file fall back to index.html so client-side routes resolve.
type StaticHandler struct {
	root   fs.FS
	files  http.Handler
	logger *zap.Logger
}

// NewStaticHandler serves files from dir.
func NewStaticHandler(dir string, logger *zap.Logger) *StaticHandler {
	return NewStaticHandlerFS(os.DirFS(dir), logger)
}

// NewStaticHandlerFS serves files from root.
func NewStaticHandlerFS(root fs.FS, logger *zap.Logger) *StaticHandler {
	return &StaticHandler{
		root:   root,
		files:  http.FileServer(http.FS(root)),
		logger: logger,
	}
}

// RegisterRoutes registers the catch-all route on the given mux.
func (h *StaticHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /", h)
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		if err := ErrorResponse(w, http.StatusNotFound, "not_found", "No such endpoint"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" {
		name = "."
	}
	if _, err := fs.Stat(h.root, name); errors.Is(err, fs.ErrNotExist) {
		h.serveIndex(w, r)
		return
	}

	h.files.ServeHTTP(w, r)
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index, err := fs.ReadFile(h.root, "index.html")
	if err != nil {
		h.logger.Debug("Front end not found", zap.Error(err))
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(index)
}
