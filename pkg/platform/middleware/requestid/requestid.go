// Package requestid assigns each request a unique identifier for log
// correlation. Incoming X-Request-Id headers are honored so upstream proxies
// can thread their own ids through.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"casegate/pkg/requestcontext"
)

const headerName = "X-Request-Id"

// Middleware ensures a request id is present in the context and echoed on the
// response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerName, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
