package middleware

import (
	"net/http"
	"strconv"
)

// CacheControl sets a Cache-Control header on GET and HEAD
// responses. Other methods pass through untouched.
func CacheControl(directive string, maxAge int) func(http.Handler) http.Handler {
	value := directive + ", max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
