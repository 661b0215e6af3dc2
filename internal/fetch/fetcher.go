package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/contentcrawler/internal/model"
)

// defaultUserAgents are common browser User-Agent strings rotated per
// request so the crawler's traffic blends with ordinary readers.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Fetcher downloads pages over plain HTTP(S) and runs the parsing
// pipeline on HTML responses.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeout, redirects) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test against httptest servers
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgents is the rotation pool for the User-Agent header.
	userAgents []string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion. Default is 5MB.
	maxBodySize int64

	// rand picks the per-request User-Agent.
	rand *rand.Rand

	logger *slog.Logger
}

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultMaxBodySize caps the response body read per page.
const DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgents replaces the User-Agent rotation pool.
func WithUserAgents(agents []string) Option {
	return func(f *Fetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with browser-like defaults.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgents:  defaultUserAgents,
		maxBodySize: DefaultMaxBodySize,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch downloads the page at url and parses it. Non-2xx responses and
// non-HTML content types are errors: the crawler has no use for either.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgents[f.rand.Intn(len(f.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !isHTMLContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type %q for %s", contentType, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	page := &model.Page{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		HTML:        string(body),
	}

	if err := parsePage(page); err != nil {
		f.logger.Debug("page parse incomplete", "url", url, "error", err)
	}
	page.Truncate()

	return page, nil
}

// isHTMLContentType reports whether the Content-Type header names a
// document the parser can handle.
func isHTMLContentType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	switch strings.ToLower(mediaType) {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}
