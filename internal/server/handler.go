package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/f4ah6o/assetserve/internal/config"
	"github.com/f4ah6o/assetserve/internal/logging"
)

// Handler serves the entry-point file for "/" and files from the asset
// directory for every other path. It holds no mutable state.
type Handler struct {
	assetDir  string
	entryFile string
	logger    *logging.Logger
}

// NewHandler creates a handler for the given configuration.
func NewHandler(cfg *config.Config, logger *logging.Logger) *Handler {
	return &Handler{
		assetDir:  cfg.AssetDir,
		entryFile: cfg.EntryFile,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	if r.URL.Path == "/" {
		h.serveEntry(w, r)
		return
	}
	h.serveAsset(w, r)
}

// serveEntry serves the entry-point file. A missing file is a 404, any other
// failure to open it is a 500.
func (h *Handler) serveEntry(w http.ResponseWriter, r *http.Request) {
	file, err := os.Open(h.entryFile)
	if err != nil {
		if os.IsNotExist(err) {
			h.logger.Debugf("Entry point missing: %v", err)
			http.NotFound(w, r)
			return
		}
		h.logger.Warnf("unable to open entry point: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		h.logger.Warnf("entry point %s is not a readable regular file", h.entryFile)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, filepath.Base(h.entryFile), info.ModTime(), file)
}

// assetName converts a request path into a slash-separated name relative to
// the asset directory. Parent segments cannot climb above the root.
func assetName(requestPath string) string {
	return strings.TrimPrefix(path.Clean("/"+requestPath), "/")
}

// serveAsset serves a regular file from the asset directory. Missing files,
// directories and names escaping the directory all produce a 404.
func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := assetName(r.URL.Path)
	if name == "" {
		http.NotFound(w, r)
		return
	}

	file, err := os.OpenInRoot(h.assetDir, filepath.FromSlash(name))
	if err != nil {
		h.logger.Tracef("No asset for %s: %v", r.URL.Path, err)
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
