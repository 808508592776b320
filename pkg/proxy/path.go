package proxy

import (
	"fmt"
	"net/url"
	"strings"
)

// Placeholders returns the parameter names in template, in order.
// Both router style "{name}" and ":name" segments are recognized.
func Placeholders(template string) []string {
	var names []string
	for _, seg := range strings.Split(template, "/") {
		if name, ok := placeholder(seg); ok {
			names = append(names, name)
		}
	}
	return names
}

// ResolvePath substitutes every placeholder segment in template with the
// matching value from params. Values are path-escaped so a parameter cannot
// introduce extra path segments or a query string. A placeholder without a
// non-empty value is an error.
func ResolvePath(template string, params map[string]string) (string, error) {
	segs := strings.Split(template, "/")
	for i, seg := range segs {
		name, ok := placeholder(seg)
		if !ok {
			continue
		}
		value := params[name]
		if value == "" {
			return "", fmt.Errorf("missing path parameter %q for %s", name, template)
		}
		segs[i] = url.PathEscape(value)
	}
	return strings.Join(segs, "/"), nil
}

// placeholder reports the parameter name of a template segment. A chi regexp
// suffix such as "{code:[a-z]+}" is ignored.
func placeholder(seg string) (string, bool) {
	switch {
	case len(seg) > 1 && seg[0] == ':':
		return seg[1:], true
	case len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}':
		name := seg[1 : len(seg)-1]
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i]
		}
		return name, name != ""
	}
	return "", false
}
