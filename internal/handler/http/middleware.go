package http

import (
	"net/http"
	"strings"

	"github.com/osamo/dreamshops/pkg/httputil"
)

// ContentTypeJSON rejects requests whose body is neither JSON nor a
// multipart upload with 415.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorEnvelope{
					Message: "Content-Type must be application/json or multipart/form-data",
					Data:    &httputil.ErrorData{Code: "UNSUPPORTED_MEDIA_TYPE"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
