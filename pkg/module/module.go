package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/actigraphy/pkg/middleware"
)

// Module serves an inner router under a single-level prefix behind its own
// middleware stack.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix (e.g. "/api"). It panics unless prefix
// is a single path segment with a leading slash.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the router wrapped in the middleware stack. The chain is
// assembled on first use, so every Use call must come before it.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Serve strips the prefix from both the decoded and the escaped path, so
// a path value holding %2F reaches the router intact.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = stripPrefix(req.URL.Path, m.prefix)
	if req.URL.RawPath != "" {
		inner.URL.RawPath = stripPrefix(req.URL.RawPath, m.prefix)
	}
	m.Handler().ServeHTTP(w, inner)
}

// Use appends mw to the stack. The first middleware added runs outermost.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	if m.handler != nil {
		panic(fmt.Sprintf("module: %s middleware added after first request", m.prefix))
	}
	m.middleware.Use(mw)
}

func stripPrefix(path, prefix string) string {
	if rest := strings.TrimPrefix(path, prefix); rest != "" {
		return rest
	}
	return "/"
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
