// Package web serves the single-page client and keeps signed-out visitors
// off its private pages.
package web

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/freedome/freedome/auth"
	"github.com/freedome/freedome/log"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PrivatePages need a signed-in user. Their subpaths are private too.
var PrivatePages = []string{
	"/favorites",
	"/businessesmap",
	"/dashboard",
	"/profile-builder",
}

// Handler serves the built client from Dir. Unknown paths get index.html so
// the client's router can handle them.
type Handler struct {
	http.Handler // router

	Dir  string
	Auth auth.Provider
}

// New creates a Handler serving dir.
func New(dir string, provider auth.Provider) *Handler {
	h := &Handler{
		Dir:  dir,
		Auth: provider,
	}

	m := mux.NewRouter()
	m.Path("/").HandlerFunc(h.HandleRoot)
	for _, p := range PrivatePages {
		m.Path(p).Handler(h.guard(http.HandlerFunc(h.HandleStatic)))
		m.PathPrefix(p + "/").Handler(h.guard(http.HandlerFunc(h.HandleStatic)))
	}
	m.PathPrefix("/").HandlerFunc(h.HandleStatic)
	h.Handler = m

	return h
}

func (h *Handler) signedIn(r *http.Request) bool {
	if h.Auth == nil {
		return false
	}
	user, err := h.Auth.FromRequest(r)
	return err == nil && user.ID != ""
}

// guard redirects signed-out visitors to the landing page, remembering where
// they were going.
func (h *Handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.signedIn(r) {
			next.ServeHTTP(w, r)
			return
		}

		log.FromContext(r.Context()).Debug("private page needs sign in",
			zap.String("path", r.URL.Path))

		target := "/?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// HandleRoot serves the landing page. A signed-in visitor with a next
// parameter is sent on to it.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if next, ok := SafeNext(r.URL.Query().Get("next")); ok && h.signedIn(r) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	h.serveIndex(w, r)
}

// HandleStatic serves a file from Dir, or index.html if there's no such file.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	full := filepath.Join(h.Dir, filepath.FromSlash(name))

	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		http.ServeFile(w, r, full)
		return
	}
	h.serveIndex(w, r)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.Dir, "index.html"))
}

// SafeNext returns next if it's a local absolute path, so a crafted link
// can't bounce a user to another site after sign in.
func SafeNext(next string) (string, bool) {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "", false
	}
	// "//host" and "/\host" are read as another host by browsers.
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return next, true
}
