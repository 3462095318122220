package middleware

import (
	"net/http"
	"strings"
)

// Predicate reports whether a request should pass through a middleware.
type Predicate func(*http.Request) bool

// Conditional applies mw only to requests matching predicate.
func Conditional(predicate Predicate, mw Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if predicate(r) {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PathPrefix matches requests whose path starts with prefix.
func PathPrefix(prefix string) Predicate {
	return func(r *http.Request) bool {
		return strings.HasPrefix(r.URL.Path, prefix)
	}
}

// Method matches requests with the given method.
func Method(method string) Predicate {
	return func(r *http.Request) bool {
		return r.Method == method
	}
}

// And matches when every predicate does.
func And(predicates ...Predicate) Predicate {
	return func(r *http.Request) bool {
		for _, p := range predicates {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
