package crawler

import (
	"strings"
	"testing"

	"github.com/nao1215/contentcrawler/internal/model"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases host and path",
			in:   "https://Example.COM/Articles/AI-News",
			want: "https://example.com/articles/ai-news",
		},
		{
			name: "strips trailing slash",
			in:   "https://example.com/articles/",
			want: "https://example.com/articles",
		},
		{
			name: "drops fragment",
			in:   "https://example.com/page#section-2",
			want: "https://example.com/page",
		},
		{
			name: "drops utm parameters",
			in:   "https://example.com/page?utm_source=feed&utm_medium=rss&id=7",
			want: "https://example.com/page?id=7",
		},
		{
			name: "drops click identifiers",
			in:   "https://example.com/page?fbclid=abc&gclid=def&ref=hn&source=tw",
			want: "https://example.com/page",
		},
		{
			name: "sorts remaining parameters",
			in:   "https://example.com/search?q=golang&b=2&a=1",
			want: "https://example.com/search?a=1&b=2&q=golang",
		},
		{
			name: "unparseable returned unchanged",
			in:   "http://exa mple.com/%zz",
			want: "http://exa mple.com/%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeURL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeURL(got); again != got {
				t.Errorf("not idempotent: NormalizeURL(%q) = %q", got, again)
			}
		})
	}
}

func record(title, summary string, keyPoints []string) *model.ContentRecord {
	return &model.ContentRecord{
		Title:     title,
		Summary:   summary,
		KeyPoints: keyPoints,
	}
}

func TestDedupIndexSimilarity(t *testing.T) {
	t.Parallel()

	longSummary := strings.Repeat("machine learning systems improve with data ", 4)

	tests := []struct {
		name     string
		existing *model.ContentRecord
		incoming *model.ContentRecord
		want     bool
	}{
		{
			name:     "exact title case-insensitive",
			existing: record("The State of AI", "first summary text here", nil),
			incoming: record("the state of ai", "entirely different words", nil),
			want:     true,
		},
		{
			name:     "title containment when both long",
			existing: record("A Complete Intro to AI for Working Engineers", "x", nil),
			incoming: record("Intro to AI for Working Engineers", "y", nil),
			want:     true,
		},
		{
			name:     "short title containment not enough",
			existing: record("Intro to AI", "summary one", nil),
			incoming: record("AI", "summary two", nil),
			want:     false,
		},
		{
			name:     "near-identical summary prefixes",
			existing: record("First article", longSummary, nil),
			incoming: record("Second article", longSummary+" extra", nil),
			want:     true,
		},
		{
			name:     "short summaries never match by jaccard",
			existing: record("First", "same words here", nil),
			incoming: record("Second", "same words here", nil),
			want:     false,
		},
		{
			name:     "identical key points",
			existing: record("One", "alpha beta gamma", []string{"GPUs are scarce", "Costs rising"}),
			incoming: record("Two", "delta epsilon zeta", []string{"gpus are scarce", "costs rising"}),
			want:     true,
		},
		{
			name:     "empty key points never collide",
			existing: record("One", "alpha beta gamma", nil),
			incoming: record("Two", "delta epsilon zeta", []string{}),
			want:     false,
		},
		{
			name:     "unrelated content",
			existing: record("Kubernetes networking deep dive", "pods and services explained in depth with detailed diagrams", nil),
			incoming: record("Sourdough starter guide", "flour and water fermentation schedule for the home baker", nil),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idx := NewDedupIndex(0)
			idx.Add(model.NewFingerprint(tt.existing))

			if got := idx.IsSimilar(tt.incoming); got != tt.want {
				t.Errorf("IsSimilar() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDedupIndexIsSimilarDoesNotAdd(t *testing.T) {
	t.Parallel()

	idx := NewDedupIndex(0)
	rec := record("Duplicate check", "some summary", nil)

	if idx.IsSimilar(rec) {
		t.Fatal("empty index reported a match")
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d after IsSimilar, want 0", idx.Len())
	}

	idx.Add(model.NewFingerprint(rec))
	if idx.Len() != 1 {
		t.Errorf("Len() = %d after Add, want 1", idx.Len())
	}
	if !idx.IsSimilar(rec) {
		t.Error("identical record not detected after Add")
	}
}

func TestJaccardSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "one two three", b: "one two three", want: 1},
		{name: "disjoint", a: "one two", b: "three four", want: 0},
		{name: "half overlap", a: "one two three four", b: "three four five six", want: 1.0 / 3.0},
		{name: "empty side", a: "", b: "one", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := jaccardSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("jaccardSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
