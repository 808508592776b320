package proxy

import (
	"reflect"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		template string
		want     []string
	}{
		{"/all", nil},
		{"/alpha/{code}", []string{"code"}},
		{"/alpha/:code", []string{"code"}},
		{"/alpha/{code:[a-z]+}", []string{"code"}},
		{"/a/{x}/b/:y", []string{"x", "y"}},
	}

	for _, tt := range tests {
		if got := Placeholders(tt.template); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Placeholders(%q) = %v, want %v", tt.template, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]string
		want     string
		wantErr  bool
	}{
		{
			name:     "static path",
			template: "/independent",
			want:     "/independent",
		},
		{
			name:     "router placeholder",
			template: "/alpha/{code}",
			params:   map[string]string{"code": "us"},
			want:     "/alpha/us",
		},
		{
			name:     "colon placeholder",
			template: "/alpha/:code",
			params:   map[string]string{"code": "us"},
			want:     "/alpha/us",
		},
		{
			name:     "value with space is escaped",
			template: "/name/{name}",
			params:   map[string]string{"name": "united states"},
			want:     "/name/united%20states",
		},
		{
			name:     "value with slash stays one segment",
			template: "/capital/{capital}",
			params:   map[string]string{"capital": "a/b"},
			want:     "/capital/a%2Fb",
		},
		{
			name:     "value with query characters is escaped",
			template: "/name/{name}",
			params:   map[string]string{"name": "x?fullText=true"},
			want:     "/name/x%3FfullText=true",
		},
		{
			name:     "missing value",
			template: "/lang/{language}",
			params:   map[string]string{},
			wantErr:  true,
		},
		{
			name:     "extra params ignored",
			template: "/region/:region",
			params:   map[string]string{"region": "europe", "other": "x"},
			want:     "/region/europe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.template, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolvePath() = %q, want %q", got, tt.want)
			}
		})
	}
}
