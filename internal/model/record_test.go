package model

import "testing"

// TestContentRecordDomain tests host extraction from record URLs.
func TestContentRecordDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain host", url: "https://example.com/post", want: "example.com"},
		{name: "uppercase host is lowered", url: "https://Example.COM/post", want: "example.com"},
		{name: "host with port", url: "http://example.com:8080/x", want: "example.com:8080"},
		{name: "empty url", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &ContentRecord{URL: tt.url}
			if got := rec.Domain(); got != tt.want {
				t.Errorf("Domain() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestContentRecordHasDate tests recognition of unusable date markers.
func TestContentRecordHasDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date string
		want bool
	}{
		{name: "iso date", date: "2025-03-14", want: true},
		{name: "free-form estimate", date: "Recent - 2024", want: true},
		{name: "unknown", date: "Unknown", want: false},
		{name: "unknown date", date: "unknown date", want: false},
		{name: "not found", date: "Not found", want: false},
		{name: "empty", date: "", want: false},
		{name: "whitespace", date: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &ContentRecord{DatePublished: tt.date}
			if got := rec.HasDate(); got != tt.want {
				t.Errorf("HasDate(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
