package assets

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// entryScript is the fixed name of the compiled entrypoint.
const entryScript = "main.dart.js"

// routes configures the fixed URL surface of the preview server.
func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/"+entryScript, s.handleEntryScript).Methods(http.MethodGet)
	r.PathPrefix("/assets/").HandlerFunc(s.handleAsset).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(s.handleAsset).Methods(http.MethodGet)

	// Everything non-GET is forbidden, regardless of path.
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	})

	r.Use(s.logMiddleware)

	return r
}

// logMiddleware logs each request at debug level.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

// handleIndex serves the application entry page from the web source root.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleCtx()
	if bundle == nil {
		http.NotFound(w, r)
		return
	}
	s.serveFile(w, r, bundle.WebRoot, "index.html", "text/html")
}

// handleEntryScript serves the compiled entrypoint from the output root.
func (s *Server) handleEntryScript(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleCtx()
	if bundle == nil {
		http.NotFound(w, r)
		return
	}
	s.serveFile(w, r, bundle.OutputRoot, entryScript, "text/javascript")
}

// handleAsset serves everything else out of the asset bundle root. A single
// leading "/assets/" prefix is stripped; the content type is left for the
// client to infer.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleCtx()
	if bundle == nil {
		http.NotFound(w, r)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/assets/")
	rel = strings.TrimPrefix(rel, "/")
	s.serveFile(w, r, bundle.AssetRoot, rel, "")
}

// serveFile streams one file from under root, constrained to root so request
// paths cannot escape the bundle directories. Anything unresolvable is a 404.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, root, rel, contentType string) {
	target := filepath.Join(root, filepath.FromSlash(rel))

	cleanRoot := filepath.Clean(root)
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, f); err != nil {
		s.log.Debug("response write interrupted", zap.Error(err))
	}
}
