package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the
// accumulated prefix of their parents.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns the
// registered ServeMux patterns in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	patterns := make([]string, 0)
	for _, group := range groups {
		group.walk("", func(pattern string, handler http.HandlerFunc) {
			mux.HandleFunc(pattern, handler)
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

// Patterns returns the ServeMux patterns the groups would register.
func Patterns(groups ...Group) []string {
	patterns := make([]string, 0)
	for _, group := range groups {
		group.walk("", func(pattern string, _ http.HandlerFunc) {
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

func (g Group) walk(parentPrefix string, visit func(pattern string, handler http.HandlerFunc)) {
	fullPrefix := parentPrefix + g.Prefix
	for _, route := range g.Routes {
		visit(route.pattern(fullPrefix), route.Handler)
	}
	for _, child := range g.Children {
		child.walk(fullPrefix, visit)
	}
}
