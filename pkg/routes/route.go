package routes

import "net/http"

// Route binds an HTTP method and path to a handler.
// Path is relative to the enclosing group prefix.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

func (r Route) under(prefix string) string {
	path := prefix + r.Path
	if path == "" {
		path = "/"
	}
	return r.Method + " " + path
}
