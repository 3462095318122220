package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, DELETE, OPTIONS"
	corsHeaders = "Accept, If-None-Match, X-Request-ID"
	corsExposed = "ETag, X-Request-ID"
	corsMaxAge  = "86400"
)

// CORS allows cross-origin reads of the asset API from the given origins.
// An origin is matched exactly, "*" allows every origin, and "*.example.com"
// allows any subdomain of example.com but not example.com itself. Preflight
// requests are answered with 204 and never reach next.
func CORS(origins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && originAllowed(origin, origins)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Expose-Headers", corsExposed)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.Header().Set("Access-Control-Allow-Methods", corsMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
					w.Header().Set("Access-Control-Max-Age", corsMaxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, origins []string) bool {
	for _, allowed := range origins {
		switch {
		case allowed == "*", allowed == origin:
			return true
		case strings.HasPrefix(allowed, "*."):
			if strings.HasSuffix(origin, allowed[1:]) {
				return true
			}
		}
	}
	return false
}
