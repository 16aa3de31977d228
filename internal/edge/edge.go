// Package edge holds the request rule applied in landing-only deployments,
// where only the landing and waitlist surface is reachable.
package edge

import (
	"net/http"
	"strings"
)

const WaitlistPath = "/waitlist"

var allowedPaths = map[string]bool{
	"/":             true,
	WaitlistPath:    true,
	"/api/waitlist": true,
	"/healthz":      true,
}

var allowedPrefixes = []string{"/assets/", "/favicon", "/static/"}

// Allowed reports whether path stays reachable in landing-only mode.
func Allowed(path string) bool {
	if allowedPaths[path] {
		return true
	}
	for _, p := range allowedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// LandingOnly redirects every request outside the allowed surface to the
// waitlist page with 307, keeping the query string. It is a no-op when
// enabled is false.
func LandingOnly(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Allowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			target := *r.URL
			target.Path = WaitlistPath
			target.RawPath = ""
			http.Redirect(w, r, target.RequestURI(), http.StatusTemporaryRedirect)
		})
	}
}
