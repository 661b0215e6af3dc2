package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/contentcrawler/internal/crawler"
	"github.com/nao1215/contentcrawler/internal/model"
)

// DefaultBaseURL is the Google Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// resultsPerQuery is the number of results requested per API call.
// Ten is the API's maximum for a single page.
const resultsPerQuery = 10

// minRestrictedResults is the result count below which a
// recency-restricted search is retried without the restriction.
const minRestrictedResults = 3

// recencyTerms mark a query as asking for fresh material, which turns
// on the last-month date restriction.
var recencyTerms = []string{"latest", "recent", "new", "update", "news", "current"}

// Ranker reorders search results by likely value to the crawl. The ai
// package's client satisfies this.
type Ranker interface {
	// RankResults returns the result URLs from most to least promising.
	RankResults(ctx context.Context, topic, query string, results []model.SearchResult) ([]string, error)
}

// GoogleClient queries the Google Custom Search API.
//
// Design decision: The topic travels in the client rather than in every
// Search call because:
//  1. A client serves exactly one crawl, which has exactly one topic
//  2. The crawler's SearchService interface stays a pure query-in,
//     URLs-out contract
//  3. Ranking needs the topic but the interface should not know that
type GoogleClient struct {
	httpClient *http.Client

	// baseURL is overridable for tests.
	baseURL string

	apiKey string
	cseID  string

	// topic is the crawl topic, used for result ranking.
	topic string

	limiter *crawler.Limiter
	ranker  Ranker
	logger  *slog.Logger
}

// GoogleOption configures a GoogleClient.
type GoogleOption func(*GoogleClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GoogleOption {
	return func(g *GoogleClient) {
		g.httpClient = client
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) GoogleOption {
	return func(g *GoogleClient) {
		g.baseURL = baseURL
	}
}

// WithRanker sets the result ranker. Without one, results keep the
// provider's order.
func WithRanker(ranker Ranker) GoogleOption {
	return func(g *GoogleClient) {
		g.ranker = ranker
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) GoogleOption {
	return func(g *GoogleClient) {
		g.logger = logger
	}
}

// NewGoogleClient creates a search client for one crawl topic.
func NewGoogleClient(apiKey, cseID, topic string, limiter *crawler.Limiter, opts ...GoogleOption) *GoogleClient {
	g := &GoogleClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		cseID:      cseID,
		topic:      topic,
		limiter:    limiter,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// Search implements crawler.SearchService. Provider failures return an
// empty list, not an error; only a fatal ranking failure propagates.
func (g *GoogleClient) Search(ctx context.Context, query string) ([]string, error) {
	restrict := wantsRecent(query)

	results, err := g.query(ctx, query, restrict)
	if err != nil {
		g.logger.Warn("search failed", "query", query, "error", err)
		return []string{}, nil
	}

	// A recency restriction that starved the query gets one retry
	// without it; both result sets are kept.
	if restrict && len(results) < minRestrictedResults {
		g.logger.Debug("few recent results, retrying unrestricted",
			"query", query,
			"results", len(results),
		)
		unrestricted, err := g.query(ctx, query, false)
		if err != nil {
			g.logger.Warn("unrestricted retry failed", "query", query, "error", err)
		} else {
			results = mergeResults(results, unrestricted)
		}
	}

	if len(results) == 0 {
		return []string{}, nil
	}

	if g.ranker == nil {
		return resultLinks(results), nil
	}

	ranked, err := g.ranker.RankResults(ctx, g.topic, query, results)
	if err != nil {
		if crawler.IsFatal(err) {
			return nil, err
		}
		g.logger.Warn("ranking failed, keeping provider order", "query", query, "error", err)
		return resultLinks(results), nil
	}
	return ranked, nil
}

// searchResponse is the slice of the API response the client reads.
type searchResponse struct {
	Items []model.SearchResult `json:"items"`
}

// query performs one paced API call.
func (g *GoogleClient) query(ctx context.Context, query string, restrictRecent bool) ([]model.SearchResult, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(resultsPerQuery))
	if restrictRecent {
		params.Set("dateRestrict", "m1")
	}

	var items []model.SearchResult
	err := g.limiter.Call(ctx, crawler.ClassSearch, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var decoded searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		items = decoded.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// wantsRecent reports whether the query asks for fresh material.
func wantsRecent(query string) bool {
	q := strings.ToLower(query)
	for _, term := range recencyTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	// A query mentioning the current or previous year wants fresh
	// material too.
	year := time.Now().Year()
	return strings.Contains(q, strconv.Itoa(year)) ||
		strings.Contains(q, strconv.Itoa(year-1))
}

// mergeResults appends extra results not already present by link.
func mergeResults(base, extra []model.SearchResult) []model.SearchResult {
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		seen[r.Link] = true
	}
	for _, r := range extra {
		if !seen[r.Link] {
			seen[r.Link] = true
			base = append(base, r)
		}
	}
	return base
}

// resultLinks returns the result URLs in provider order.
func resultLinks(results []model.SearchResult) []string {
	links := make([]string, 0, len(results))
	for _, r := range results {
		links = append(links, r.Link)
	}
	return links
}
