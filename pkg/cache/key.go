package cache

import (
	"encoding/json"
	"net/url"
)

// Key identifies a cached upstream response.
type Key struct {
	// Path is the resolved upstream path (e.g. "/alpha/us").
	Path string

	// Query is the inbound query-parameter mapping.
	Query url.Values
}

// String generates a deterministic cache key string: the resolved path
// followed by the JSON serialization of the query mapping.
//
// Query keys are serialized in sorted order, so "?a=1&b=2" and "?b=2&a=1"
// share a key. Single-valued parameters serialize as strings and repeated
// parameters as arrays.
//
// Examples:
//
//	/alpha/us{}
//	/independent{"status":"true"}
//	/all{"fields":["name","flags"]}
func (k Key) String() string {
	return k.Path + serializeQuery(k.Query)
}

func serializeQuery(q url.Values) string {
	if len(q) == 0 {
		return "{}"
	}

	m := make(map[string]any, len(q))
	for name, values := range q {
		switch len(values) {
		case 0:
			m[name] = ""
		case 1:
			m[name] = values[0]
		default:
			m[name] = values
		}
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
