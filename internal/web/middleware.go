// internal/web/middleware.go
//
// Small composable HTTP wrappers: admin gating, baseline security
// headers, and the optional HTTPS redirect.
package web

import (
	"net/http"
	"strings"

	"github.com/najeorg/naje-backend/internal/auth"
)

// requireAdmin rejects the request before the handler runs unless the
// Authorization header carries a valid admin credential.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer, ok := auth.BearerFromHeader(r.Header.Get("Authorization"))
		if !ok || !s.authz.Authorize(bearer) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// securityHeaders sets the baseline response headers for every route.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// ForceHTTPS wraps h.  Plain-HTTP requests to non-local hosts get a 308
// to the same URL on HTTPS; everything else passes through.
func ForceHTTPS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || stripPort(r.Host) == "localhost" ||
			r.Header.Get("X-Forwarded-Proto") == "https" {
			h.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
