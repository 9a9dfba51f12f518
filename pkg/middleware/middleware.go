// Package middleware provides the HTTP middleware stack shared by modules:
// CORS, request logging, panic recovery and bearer-token auth.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// System manages an ordered stack of HTTP middleware.
// The first middleware added is the outermost.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack []func(http.Handler) http.Handler

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	*s = append(*s, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(*s) - 1; i >= 0; i-- {
		handler = (*s)[i](handler)
	}
	return handler
}

// Recover returns middleware that turns a handler panic into a 500 response
// and logs the panic value with its stack. http.ErrAbortHandler is re-raised
// so the server can abort the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error(
					"handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"panic", v,
					"stack", string(debug.Stack()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
