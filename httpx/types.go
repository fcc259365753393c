package httpx

import (
	"fmt"
	"strings"

	"dqx0.com/go/tinyhttp/httpx/internal/http1"
)

// Header holds request headers keyed by lower-case name. When a name
// repeats on the wire the last value wins.
type Header map[string]string

func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[strings.ToLower(key)]
}

// Lookup is Get that also reports presence.
func (h Header) Lookup(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	v, ok := h[strings.ToLower(key)]
	return v, ok
}

// Require returns the value of key or ErrMissingHeader.
func (h Header) Require(key string) (string, error) {
	v, ok := h.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, key)
	}
	return v, nil
}

// Field is one response header line.
type Field = http1.Field

// Fields is an ordered list of response headers. Names compare
// case-insensitively; output keeps insertion order.
type Fields []Field

func (f Fields) Get(key string) string {
	for _, kv := range f {
		if strings.EqualFold(kv.Name, key) {
			return kv.Value
		}
	}
	return ""
}

// Set replaces the first field named key in place, or appends it.
func (f *Fields) Set(key, value string) {
	for i, kv := range *f {
		if strings.EqualFold(kv.Name, key) {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Name: key, Value: value})
}

func (f *Fields) Add(key, value string) {
	*f = append(*f, Field{Name: key, Value: value})
}

func (f *Fields) Del(key string) {
	out := (*f)[:0]
	for _, kv := range *f {
		if !strings.EqualFold(kv.Name, key) {
			out = append(out, kv)
		}
	}
	*f = out
}
