package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "path without query",
			key:  Key{Path: "/alpha/us"},
			want: "/alpha/us{}",
		},
		{
			name: "empty query values",
			key:  Key{Path: "/all", Query: url.Values{}},
			want: "/all{}",
		},
		{
			name: "single query parameter",
			key: Key{
				Path:  "/independent",
				Query: url.Values{"status": []string{"true"}},
			},
			want: `/independent{"status":"true"}`,
		},
		{
			name: "multiple query parameters (sorted)",
			key: Key{
				Path: "/name/france",
				Query: url.Values{
					"fullText": []string{"true"},
					"fields":   []string{"name"},
				},
			},
			want: `/name/france{"fields":"name","fullText":"true"}`,
		},
		{
			name: "repeated query parameter",
			key: Key{
				Path:  "/all",
				Query: url.Values{"fields": []string{"name", "flags"}},
			},
			want: `/all{"fields":["name","flags"]}`,
		},
		{
			name: "flag without value",
			key: Key{
				Path:  "/all",
				Query: url.Values{"verbose": []string{""}},
			},
			want: `/all{"verbose":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKey_QueryOrderInsensitive(t *testing.T) {
	a, err := url.ParseQuery("status=true&fields=name")
	if err != nil {
		t.Fatal(err)
	}
	b, err := url.ParseQuery("fields=name&status=true")
	if err != nil {
		t.Fatal(err)
	}

	ka := Key{Path: "/independent", Query: a}.String()
	kb := Key{Path: "/independent", Query: b}.String()
	if ka != kb {
		t.Errorf("keys differ for reordered query: %q vs %q", ka, kb)
	}
}

func TestKey_DistinguishesPathAndQuery(t *testing.T) {
	keys := map[string]bool{}
	for _, k := range []Key{
		{Path: "/alpha/us"},
		{Path: "/alpha/de"},
		{Path: "/alpha/us", Query: url.Values{"fields": []string{"name"}}},
		{Path: "/name/us"},
	} {
		s := k.String()
		if keys[s] {
			t.Errorf("duplicate key %q", s)
		}
		keys[s] = true
	}
}

// TestKey_Determinism ensures same input always produces same key
func TestKey_Determinism(t *testing.T) {
	key := Key{
		Path: "/region/europe",
		Query: url.Values{
			"fields": []string{"name", "capital"},
			"status": []string{"true"},
			"a":      []string{"1"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
