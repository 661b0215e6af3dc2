package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Quantum Networking Advances</title>
<meta property="article:published_time" content="2025-03-14T09:00:00Z">
<meta name="date" content="should not win">
</head>
<body>
<nav><a href="/about">About</a></nav>
<article>
<h1>Quantum Networking Advances</h1>
<p>Researchers demonstrated entanglement distribution across a metropolitan
fiber network, a prerequisite for quantum repeaters. The experiment ran for
three weeks and sustained fidelity above the threshold needed for error
correction, according to the team.</p>
<p>See the <a href="/papers/entanglement">full paper</a> and
<a href="https://other.example/coverage#comments">independent coverage</a>.
Ignore <a href="mailto:team@example.com">mail</a> and
<a href="javascript:void(0)">scripts</a>.</p>
</article>
</body>
</html>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := io.WriteString(w, articleHTML); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(WithLogger(testLogger()))
	page, err := fetcher.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", page.StatusCode)
	}
	if page.Title != "Quantum Networking Advances" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.Text, "entanglement distribution") {
		t.Errorf("Text missing article body: %q", page.Text)
	}
	if page.MetaDate != "2025-03-14T09:00:00Z" {
		t.Errorf("MetaDate = %q, want the article:published_time value", page.MetaDate)
	}

	found := false
	for _, ua := range defaultUserAgents {
		if ua == gotUA {
			found = true
		}
	}
	if !found {
		t.Errorf("User-Agent %q not from the rotation pool", gotUA)
	}
}

func TestFetcherLinkExtraction(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, articleHTML)
	}))
	defer server.Close()

	fetcher := NewFetcher(WithLogger(testLogger()))
	page, err := fetcher.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}

	want := []string{
		server.URL + "/about",
		server.URL + "/papers/entanglement",
		"https://other.example/coverage",
	}
	if len(page.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", page.Links, want)
	}
	for i, link := range want {
		if page.Links[i] != link {
			t.Errorf("Links[%d] = %q, want %q", i, page.Links[i], link)
		}
	}
}

func TestFetcherRejectsNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(WithLogger(testLogger()))
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch() of a 404 succeeded, want error")
	}
}

func TestFetcherRejectsNonHTML(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer server.Close()

	fetcher := NewFetcher(WithLogger(testLogger()))
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch() of a PDF succeeded, want error")
	}
}

func TestFetcherBodySizeCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html><body>")
		_, _ = io.WriteString(w, strings.Repeat("x", 4096))
		_, _ = io.WriteString(w, "</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(WithLogger(testLogger()), WithMaxBodySize(1024))
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if len(page.HTML) > 1024 {
		t.Errorf("HTML length = %d, want <= 1024", len(page.HTML))
	}
}

func TestFetcherContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(WithLogger(testLogger()))
	if _, err := fetcher.Fetch(ctx, server.URL); err == nil {
		t.Error("Fetch() with canceled context succeeded")
	}
}

func TestIsHTMLContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{contentType: "text/html", want: true},
		{contentType: "text/html; charset=utf-8", want: true},
		{contentType: "application/xhtml+xml", want: true},
		{contentType: "TEXT/HTML", want: true},
		{contentType: "application/json", want: false},
		{contentType: "image/png", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()
			if got := isHTMLContentType(tt.contentType); got != tt.want {
				t.Errorf("isHTMLContentType(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestExtractMetaDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		head string
		want string
	}{
		{
			name: "published time beats everything",
			head: `<meta property="og:updated_time" content="2025-02-01">
<meta property="article:published_time" content="2025-01-15">`,
			want: "2025-01-15",
		},
		{
			name: "og updated time",
			head: `<meta property="og:updated_time" content="2025-02-01">
<meta name="date" content="2024-12-31">`,
			want: "2025-02-01",
		},
		{
			name: "pubdate name variant",
			head: `<meta name="pubdate" content="2025-03-03">`,
			want: "2025-03-03",
		},
		{
			name: "lastmod name variant",
			head: `<meta name="lastmod" content="2025-04-04">`,
			want: "2025-04-04",
		},
		{
			name: "itemprop dateCreated",
			head: `<meta itemprop="dateCreated" content="2025-05-05">`,
			want: "2025-05-05",
		},
		{
			name: "no date tags",
			head: `<meta name="description" content="nothing dated here">`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := "<html><head>" + tt.head + "</head><body></body></html>"
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
			if err != nil {
				t.Fatalf("failed to parse document: %v", err)
			}
			if got := extractMetaDate(doc); got != tt.want {
				t.Errorf("extractMetaDate() = %q, want %q", got, tt.want)
			}
		})
	}
}
