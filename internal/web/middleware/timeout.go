package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wpschema/wpschema/internal/web/response"
)

// Timeout bounds the request context. Generation runs synchronously and
// the content source honours the deadline, so a slow database query
// ends with 504 instead of holding the connection.
func Timeout(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			if !rw.wroteHeader && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				response.RenderErrorWithCode(w, http.StatusGatewayTimeout, errors.New("Request timeout"), "")
			}
		})
	}
}
