package httpx

import "strings"

// Handler produces the outcome for one request. A returned error is
// converted to a best-effort error response by the server.
type Handler interface {
	Serve(*Request) (*Outcome, error)
}

type HandlerFunc func(*Request) (*Outcome, error)

func (f HandlerFunc) Serve(r *Request) (*Outcome, error) {
	return f(r)
}

type rule struct {
	pattern string
	prefix  bool
	h       Handler
}

func (ru rule) match(target string) bool {
	if ru.prefix {
		return strings.HasPrefix(target, ru.pattern)
	}
	return target == ru.pattern
}

// Router dispatches on the request target using exact and prefix rules,
// evaluated in registration order. The first match wins; no match yields
// a 404 outcome.
type Router struct {
	rules []rule
}

// Handle registers h for requests whose target equals path.
func (rt *Router) Handle(path string, h Handler) {
	rt.rules = append(rt.rules, rule{pattern: path, h: h})
}

func (rt *Router) HandleFunc(path string, f func(*Request) (*Outcome, error)) {
	rt.Handle(path, HandlerFunc(f))
}

// HandlePrefix registers h for requests whose target starts with prefix.
func (rt *Router) HandlePrefix(prefix string, h Handler) {
	rt.rules = append(rt.rules, rule{pattern: prefix, prefix: true, h: h})
}

func (rt *Router) HandlePrefixFunc(prefix string, f func(*Request) (*Outcome, error)) {
	rt.HandlePrefix(prefix, HandlerFunc(f))
}

// Serve implements Handler.
func (rt *Router) Serve(r *Request) (*Outcome, error) {
	for _, ru := range rt.rules {
		if ru.match(r.Target) {
			return ru.h.Serve(r)
		}
	}
	return Empty(StatusNotFound), nil
}
