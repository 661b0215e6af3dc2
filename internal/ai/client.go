package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nao1215/contentcrawler/internal/crawler"
	"github.com/nao1215/contentcrawler/internal/model"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// maxSuggestions caps follow-up queries and links per accepted record.
const maxSuggestions = 3

// ChatCompleter is the subset of the OpenAI client the package uses.
// Tests substitute a canned implementation.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client answers the crawler's generative questions through a chat
// model, with every request paced and retried by the shared Limiter.
type Client struct {
	chat    ChatCompleter
	limiter *crawler.Limiter

	// model is the chat model name sent with each request.
	model string

	// temperature keeps extraction output stable; suggestion prompts
	// share it because variety there comes from the content, not
	// sampling.
	temperature float32

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the chat model name.
func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

// WithChatCompleter replaces the underlying chat client.
func WithChatCompleter(chat ChatCompleter) Option {
	return func(c *Client) {
		c.chat = chat
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a Client backed by the OpenAI API.
func NewClient(apiKey string, limiter *crawler.Limiter, opts ...Option) *Client {
	c := &Client{
		chat:        openai.NewClient(apiKey),
		limiter:     limiter,
		model:       DefaultModel,
		temperature: 0.3,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// complete sends one user prompt through the limiter and returns the
// first choice's content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var content string
	err := c.limiter.Call(ctx, crawler.ClassGenerative, func() error {
		resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: c.temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return classifyProviderError(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("completion response has no choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// classifyProviderError tags rate-limit and quota failures with the
// crawler's sentinel so the limiter applies exponential backoff instead
// of the fixed retry delay.
func classifyProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", crawler.ErrRateLimited, err)
	}
	return err
}

// ClassifyRelevance implements crawler.Intelligence. The model answers
// YES or NO; anything that does not start with YES counts as NO.
func (c *Client) ClassifyRelevance(ctx context.Context, pageURL, text, topic string) (bool, error) {
	answer, err := c.complete(ctx, relevancePrompt(pageURL, text, topic))
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES"), nil
}

// extractionPayload is the JSON shape requested from the model.
type extractionPayload struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	KeyPoints      []string  `json:"key_points"`
	DatePublished  string    `json:"date_published"`
	Author         string    `json:"author"`
	ContentType    string    `json:"content_type"`
	Categories     []string  `json:"categories"`
	RelevanceScore flexFloat `json:"relevance_score"`
}

// ExtractContent implements crawler.Intelligence. A malformed model
// response degrades to a best-effort record carrying the raw analysis
// text; the page was already judged relevant, so discarding it over a
// formatting failure would waste the call.
func (c *Client) ExtractContent(ctx context.Context, page *model.Page, topic string) (*model.ContentRecord, error) {
	raw, err := c.complete(ctx, extractionPrompt(page, topic))
	if err != nil {
		return nil, err
	}

	rec := &model.ContentRecord{
		URL:         page.URL,
		FullText:    page.Text,
		SearchQuery: topic,
		CrawledAt:   c.now(),
	}

	var payload extractionPayload
	if err := decodeObject(raw, &payload); err != nil {
		c.logger.Warn("extraction response not parseable, keeping raw analysis",
			"url", page.URL,
			"error", err,
		)
		rec.Title = page.Title
		rec.DatePublished = firstNonEmpty(page.MetaDate, "Unknown")
		rec.Author = page.Byline
		rec.RelevanceScore = 5
		rec.RawAnalysis = raw
		return rec, nil
	}

	rec.Title = firstNonEmpty(payload.Title, page.Title)
	rec.Summary = payload.Summary
	rec.KeyPoints = payload.KeyPoints
	rec.DatePublished = payload.DatePublished
	rec.Author = firstNonEmpty(payload.Author, page.Byline)
	rec.ContentType = payload.ContentType
	rec.Categories = payload.Categories
	rec.RelevanceScore = float64(payload.RelevanceScore)

	// Page metadata beats a model estimate, and an estimate beats
	// nothing at all.
	if !rec.HasDate() && page.MetaDate != "" {
		rec.DatePublished = page.MetaDate
	}
	if rec.DatePublished == "" {
		rec.DatePublished = "Unknown"
	}

	return rec, nil
}

// SuggestQueries implements crawler.Intelligence. A malformed response
// costs only the suggestions.
func (c *Client) SuggestQueries(ctx context.Context, rec *model.ContentRecord, topic string, saturated []string) ([]string, error) {
	raw, err := c.complete(ctx, suggestQueriesPrompt(rec, topic, saturated))
	if err != nil {
		return nil, err
	}

	queries, err := decodeStringArray(raw)
	if err != nil {
		c.logger.Warn("query suggestion response not parseable", "error", err)
		return nil, nil
	}
	return capSlice(queries, maxSuggestions), nil
}

// SuggestLinks implements crawler.Intelligence. Only URLs that were
// actually offered in the prompt are accepted back; the model is not
// allowed to invent destinations.
func (c *Client) SuggestLinks(ctx context.Context, pageURL string, links []string, topic string) ([]string, error) {
	if len(links) == 0 {
		return nil, nil
	}

	raw, err := c.complete(ctx, suggestLinksPrompt(pageURL, links, topic))
	if err != nil {
		return nil, err
	}

	picked, err := decodeStringArray(raw)
	if err != nil {
		c.logger.Warn("link suggestion response not parseable", "error", err)
		return nil, nil
	}

	offered := make(map[string]bool, len(links))
	for _, link := range links {
		offered[link] = true
	}

	var out []string
	for _, link := range picked {
		link = strings.TrimSpace(link)
		if offered[link] {
			out = append(out, link)
		}
	}
	return capSlice(out, maxSuggestions), nil
}

// RankResults orders search results by likely value to the crawl and
// returns their URLs. A malformed ranking response falls back to the
// provider's original order.
func (c *Client) RankResults(ctx context.Context, topic, query string, results []model.SearchResult) ([]string, error) {
	if len(results) == 0 {
		return nil, nil
	}

	raw, err := c.complete(ctx, rankResultsPrompt(topic, query, results))
	if err != nil {
		return nil, err
	}

	order, err := decodeIntArray(raw)
	if err != nil || len(order) == 0 {
		c.logger.Warn("ranking response not parseable, keeping provider order", "query", query)
		return resultLinks(results), nil
	}

	seen := make(map[int]bool, len(order))
	var out []string
	for _, n := range order {
		idx := n - 1 // the prompt numbers results from 1
		if idx < 0 || idx >= len(results) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, results[idx].Link)
	}
	if len(out) == 0 {
		return resultLinks(results), nil
	}
	return out, nil
}

// resultLinks returns the result URLs in provider order.
func resultLinks(results []model.SearchResult) []string {
	links := make([]string, 0, len(results))
	for _, r := range results {
		links = append(links, r.Link)
	}
	return links
}

// capSlice limits a slice to at most n elements.
func capSlice(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// flexFloat decodes a JSON number whether the model sent it as a number
// or as a quoted string.
type flexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("relevance score is neither number nor string: %s", data)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("relevance score %q is not numeric", s)
	}
	*f = flexFloat(n)
	return nil
}
