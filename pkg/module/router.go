package module

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Router dispatches requests to mounted modules by their first path
// segment. Unmatched paths, such as health probes, fall through to a
// native ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router with an empty module map and native fallback mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers a module under its prefix. Mounting two modules on the
// same prefix panics, matching ServeMux's handling of conflicting patterns.
func (r *Router) Mount(m *Module) {
	if _, ok := r.modules[m.prefix]; ok {
		panic(fmt.Sprintf("module: prefix %s already mounted", m.prefix))
	}
	r.modules[m.prefix] = m
}

// Prefixes returns the mounted module prefixes in sorted order.
func (r *Router) Prefixes() []string {
	prefixes := make([]string, 0, len(r.modules))
	for prefix := range r.modules {
		prefixes = append(prefixes, prefix)
	}
	slices.Sort(prefixes)
	return prefixes
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
// A single trailing slash is dropped first, so /api/subjects/ and
// /api/subjects reach the same route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req = trimTrailingSlash(req)

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}

	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest, ok := strings.CutPrefix(path, "/")
	if !ok {
		return path
	}
	seg, _, _ := strings.Cut(rest, "/")
	return "/" + seg
}

func trimTrailingSlash(req *http.Request) *http.Request {
	if len(req.URL.Path) <= 1 || !strings.HasSuffix(req.URL.Path, "/") {
		return req
	}
	out := req.Clone(req.Context())
	out.URL.Path = strings.TrimSuffix(req.URL.Path, "/")
	if req.URL.RawPath != "" {
		out.URL.RawPath = strings.TrimSuffix(req.URL.RawPath, "/")
	}
	return out
}
