package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ducksnap/internal/middleware"

	"github.com/rs/zerolog"
)

// Access levels of client pages.
const (
	Public    = "public"
	Protected = "protected"
)

// Routes is the client page table. Paths not listed here are not found.
var Routes = map[string]string{
	"/":              Public,
	"/auth":          Public,
	"/login":         Public,
	"/signup":        Public,
	"/pricing":       Public,
	"/prerequisites": Public,
	"/dashboard":     Protected,
	"/connect":       Protected,
	"/settings":      Protected,
	"/reports":       Protected,
	"/help":          Protected,
}

// Lookup returns the access level of a page path and whether it exists.
func Lookup(p string) (string, bool) {
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	access, ok := Routes[p]
	return access, ok
}

// Handler serves the single page app. Protected pages without a valid
// session redirect to /auth; built assets under staticDir are served as is.
func Handler(staticDir, jwtSecret string, logger zerolog.Logger) http.Handler {
	logger = logger.With().Str("handler", "web").Logger()
	index := filepath.Join(staticDir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		clean := path.Clean("/" + r.URL.Path)

		access, known := Lookup(clean)
		if known && access == Protected {
			if _, err := middleware.SessionUserID(r, jwtSecret); err != nil {
				http.Redirect(w, r, "/auth", http.StatusFound)
				return
			}
		}

		if !known && clean != "/" {
			asset := filepath.Join(staticDir, filepath.FromSlash(clean))
			if fi, err := os.Stat(asset); err == nil && !fi.IsDir() {
				http.ServeFile(w, r, asset)
				return
			}
		}

		body, err := os.ReadFile(index)
		if err != nil {
			logger.Warn().Err(err).Str("path", index).Msg("SPA entry not found")
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if known {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
		if r.Method == http.MethodGet {
			w.Write(body)
		}
	})
}
