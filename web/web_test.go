package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freedome/freedome/auth"
)

// cookieAuth signs in anyone with a non-empty jwt cookie, using its value as
// the user id.
type cookieAuth struct{}

func (cookieAuth) FromRequest(r *http.Request) (auth.Info, error) {
	c, err := r.Cookie("jwt")
	if err != nil {
		return auth.Info{}, nil
	}
	return auth.Info{ID: c.Value}, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"index.html":    "<html>index</html>",
		"assets/app.js": "console.log('app')",
		"favicon.ico":   "icon",
	}
	for name, body := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return New(dir, cookieAuth{})
}

func get(h http.Handler, target, session string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("GET", target, nil)
	if session != "" {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: session})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestGuard(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		target   string
		session  string
		code     int
		location string
	}{
		{"/favorites", "", http.StatusFound, "/?next=%2Ffavorites"},
		{"/dashboard?tab=offers", "", http.StatusFound, "/?next=%2Fdashboard%3Ftab%3Doffers"},
		{"/profile-builder/step2", "", http.StatusFound, "/?next=%2Fprofile-builder%2Fstep2"},
		{"/businessesmap", "", http.StatusFound, "/?next=%2Fbusinessesmap"},
		{"/favorites", "u1", http.StatusOK, ""},
		{"/mainpage", "", http.StatusOK, ""},
		{"/business/b1", "", http.StatusOK, ""},
		{"/favoritesextra", "", http.StatusOK, ""},
	}

	for _, test := range tests {
		t.Run(test.target, func(t *testing.T) {
			w := get(h, test.target, test.session)
			if w.Code != test.code {
				t.Fatalf("status = %d, want %d", w.Code, test.code)
			}
			if got := w.Header().Get("Location"); got != test.location {
				t.Errorf("Location = %q, want %q", got, test.location)
			}
		})
	}
}

func TestRootHonorsNext(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		target   string
		session  string
		code     int
		location string
	}{
		{"/?next=%2Fdashboard%3Ftab%3Doffers", "u1", http.StatusFound, "/dashboard?tab=offers"},
		{"/?next=%2Fdashboard", "", http.StatusOK, ""},
		{"/?next=https%3A%2F%2Fevil.example", "u1", http.StatusOK, ""},
		{"/?next=%2F%2Fevil.example", "u1", http.StatusOK, ""},
		{"/", "u1", http.StatusOK, ""},
	}

	for _, test := range tests {
		w := get(h, test.target, test.session)
		if w.Code != test.code {
			t.Errorf("GET %s: status = %d, want %d", test.target, w.Code, test.code)
			continue
		}
		if got := w.Header().Get("Location"); got != test.location {
			t.Errorf("GET %s: Location = %q, want %q", test.target, got, test.location)
		}
	}
}

func TestStatic(t *testing.T) {
	h := newTestHandler(t)

	w := get(h, "/assets/app.js", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "console.log") {
		t.Errorf("app.js: %d %q", w.Code, w.Body.String())
	}

	// Client-side routes fall back to the index page.
	w = get(h, "/ekdiloseis", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "index") {
		t.Errorf("client route: %d %q", w.Code, w.Body.String())
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		ok   bool
	}{
		{"/dashboard", true},
		{"/business/b1?tab=reviews", true},
		{"", false},
		{"dashboard", false},
		{"//evil.example/x", false},
		{"/\\evil.example", false},
		{"https://evil.example/", false},
		{"javascript:alert(1)", false},
	}
	for _, test := range tests {
		got, ok := SafeNext(test.next)
		if ok != test.ok {
			t.Errorf("SafeNext(%q) ok = %v, want %v", test.next, ok, test.ok)
		}
		if ok && got != test.next {
			t.Errorf("SafeNext(%q) = %q", test.next, got)
		}
	}
}
