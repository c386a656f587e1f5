package matching

import (
	"sort"
	"strings"
)

// Route binds a method and path template to a value.
type Route[T any] struct {
	Method   string
	Template *Template
	Value    T
}

// Match is the outcome of a successful lookup.
type Match[T any] struct {
	Route  Route[T]
	Params map[string]string
	Score  int
}

// NearMiss is a route whose path matched a request while its method did
// not.
type NearMiss struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Router finds the most specific route for a request. It is not safe for
// concurrent modification; build it before serving.
type Router[T any] struct {
	routes []Route[T]
}

// Add registers a route.
func (r *Router[T]) Add(method string, tmpl *Template, v T) {
	r.routes = append(r.routes, Route[T]{Method: strings.ToUpper(method), Template: tmpl, Value: v})
}

// Routes returns the registered routes in registration order.
func (r *Router[T]) Routes() []Route[T] {
	return r.routes
}

// MatchMethod reports whether a request method satisfies a route method.
func MatchMethod(expected, actual string) bool {
	return strings.EqualFold(expected, actual)
}

// Find returns the highest scoring route matching method and the escaped
// path. Among equal scores the first registered route wins.
func (r *Router[T]) Find(method, path string) (Match[T], bool) {
	var best Match[T]
	found := false
	for _, route := range r.routes {
		if !MatchMethod(route.Method, method) {
			continue
		}
		params, ok := route.Template.Match(path)
		if !ok {
			continue
		}
		score := ScoreMethod + route.Template.Score()
		if !found || score > best.Score {
			best = Match[T]{Route: route, Params: params, Score: score}
			found = true
		}
	}
	return best, found
}

// NearMisses lists the routes that match path under another method,
// sorted by method.
func (r *Router[T]) NearMisses(method, path string) []NearMiss {
	var misses []NearMiss
	for _, route := range r.routes {
		if MatchMethod(route.Method, method) {
			continue
		}
		if _, ok := route.Template.Match(path); ok {
			misses = append(misses, NearMiss{
				Method: route.Method,
				Path:   route.Template.String(),
				Reason: "method mismatch",
			})
		}
	}
	sort.SliceStable(misses, func(i, j int) bool {
		return misses[i].Method < misses[j].Method
	})
	return misses
}
