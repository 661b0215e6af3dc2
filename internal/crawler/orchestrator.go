package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nao1215/contentcrawler/internal/model"
)

// Default crawl limits.
const (
	// DefaultMaxPages is the default visited-page budget per run.
	DefaultMaxPages = 50

	// DefaultMaxContent is the default accepted-content target per run.
	DefaultMaxContent = 15
)

// seedQueryTemplates produce the initial search queries for a topic:
// the topic itself first, then recency variants. %[1]s is the topic,
// %[2]d the current year.
var seedQueryTemplates = []string{
	"%[1]s",
	"latest %[1]s %[2]d",
	"%[1]s recent developments",
	"%[1]s recent research",
	"%[1]s updated %[2]d",
}

// deepenQueryTemplates refine the search once some content has been
// found. Used when the frontier drains mid-run.
var deepenQueryTemplates = []string{
	"%s key insights",
	"important information about %s",
	"%s complete guide",
	"what you need to know about %s",
}

// broadenQueryTemplates widen the search when the frontier drains
// before anything has been found.
var broadenQueryTemplates = []string{
	"%s overview",
	"introduction to %s",
	"basics of %s",
	"%s for beginners",
}

// Orchestrator runs one topic-driven crawl: it seeds the frontier with
// search queries, alternates between issuing searches and visiting
// candidate pages, and stops when a budget is hit or the frontier
// cannot be refilled.
//
// The crawl is strictly sequential. One page or one query at a time,
// with jittered pauses between iterations, so the traffic pattern
// stays polite to both the crawled sites and the external APIs.
type Orchestrator struct {
	fetcher Fetcher
	search  SearchService
	intel   Intelligence
	store   Store

	maxPages            int
	maxContent          int
	maxPerDomain        int
	similarityThreshold float64

	logger *slog.Logger
	now    func() time.Time
	sleep  func(time.Duration)
	rand   *rand.Rand
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMaxPages sets the visited-page budget.
func WithMaxPages(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxPages = n
		}
	}
}

// WithMaxContent sets the accepted-content target.
func WithMaxContent(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxContent = n
		}
	}
}

// WithMaxPerDomain sets the per-domain accepted-content ceiling.
func WithMaxPerDomain(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxPerDomain = n
		}
	}
}

// WithSimilarityThreshold sets the summary-prefix Jaccard cutoff.
func WithSimilarityThreshold(t float64) OrchestratorOption {
	return func(o *Orchestrator) {
		if t > 0 {
			o.similarityThreshold = t
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSleep injects the sleep function.
func WithSleep(sleep func(time.Duration)) OrchestratorOption {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// NewOrchestrator wires the four collaborators into a crawl runner.
func NewOrchestrator(fetcher Fetcher, search SearchService, intel Intelligence, store Store, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:             fetcher,
		search:              search,
		intel:               intel,
		store:               store,
		maxPages:            DefaultMaxPages,
		maxContent:          DefaultMaxContent,
		maxPerDomain:        DefaultMaxPerDomain,
		similarityThreshold: DefaultSimilarityThreshold,
		now:                 time.Now,
		sleep:               time.Sleep,
		rand:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Run crawls the topic until a budget is hit, the frontier cannot be
// refilled, the context is canceled, or an external service fails
// fatally. It returns the run summary with contents ranked by relevance
// and recency; on fatal error or cancellation the partial result is
// discarded and the error returned.
func (o *Orchestrator) Run(ctx context.Context, topic string) (*model.CrawlResult, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}

	started := o.now()
	state := NewState(o.maxPerDomain, o.similarityThreshold)
	frontier := NewFrontier(state)
	stats := &model.CrawlStats{}
	var contents []model.ContentSummary

	year := started.Year()
	for _, tmpl := range seedQueryTemplates {
		frontier.PushQuery(fmt.Sprintf(tmpl, topic, year))
	}

	o.logger.Info("crawl started",
		"topic", topic,
		"max_pages", o.maxPages,
		"max_content", o.maxContent,
		"max_per_domain", o.maxPerDomain,
	)

	for stats.PagesVisited < o.maxPages && stats.ContentFound < o.maxContent {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if frontier.IsEmpty() {
			if !o.expand(frontier, topic, stats) {
				o.logger.Info("frontier exhausted, stopping")
				break
			}
		}

		item, ok := frontier.Pop()
		if !ok {
			break
		}

		var err error
		switch item.Kind {
		case model.KindCandidateURL:
			err = o.processCandidate(ctx, item.URL, topic, state, frontier, stats, &contents)
		case model.KindSearchQuery:
			err = o.processQuery(ctx, item.Query, frontier, stats)
		}
		if err != nil {
			return nil, err
		}

		o.jitter()
	}

	result := &model.CrawlResult{
		Topic:        topic,
		StartedAt:    started,
		Duration:     o.now().Sub(started),
		Stats:        *stats,
		DomainCounts: state.Quota.Counts(),
		Contents:     contents,
	}
	result.RankContents()

	o.logger.Info("crawl finished",
		"pages_visited", stats.PagesVisited,
		"content_found", stats.ContentFound,
		"queries_used", stats.QueriesUsed,
		"duration", result.Duration,
	)

	return result, nil
}

// expand refills an empty frontier with follow-up queries: deepening
// templates once content has been found, broadening templates
// otherwise. Returns false when every template is already in the query
// history, which ends the run.
func (o *Orchestrator) expand(frontier *Frontier, topic string, stats *model.CrawlStats) bool {
	templates := broadenQueryTemplates
	mode := "broaden"
	if stats.ContentFound > 0 {
		templates = deepenQueryTemplates
		mode = "deepen"
	}

	pushed := 0
	for _, tmpl := range templates {
		if frontier.PushQuery(fmt.Sprintf(tmpl, topic)) {
			pushed++
		}
	}

	if pushed > 0 {
		o.logger.Info("frontier expanded", "mode", mode, "queries", pushed)
	}
	return pushed > 0
}

// processCandidate runs the full admission pipeline for one candidate
// URL. Per-item failures are counted and swallowed; only a fatal
// external-service error is returned.
func (o *Orchestrator) processCandidate(ctx context.Context, rawURL, topic string, state *State, frontier *Frontier, stats *model.CrawlStats, contents *[]model.ContentSummary) error {
	normalized := NormalizeURL(rawURL)

	if state.Visited(normalized) {
		stats.DuplicatesSkipped++
		return nil
	}
	if !state.Quota.Admit(rawURL) {
		o.logger.Debug("domain quota reached", "url", rawURL)
		stats.QuotaSkipped++
		return nil
	}

	// Mark before fetching: a URL that fails is never retried.
	state.MarkVisited(normalized)
	stats.PagesVisited++

	o.logger.Info("visiting", "url", rawURL, "visited", stats.PagesVisited)

	page, err := o.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		o.logger.Warn("fetch failed", "url", rawURL, "error", err)
		stats.Errors++
		return nil
	}

	relevant, err := o.intel.ClassifyRelevance(ctx, rawURL, page.Text, topic)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		o.logger.Warn("relevance check failed", "url", rawURL, "error", err)
		stats.Errors++
		return nil
	}
	if !relevant {
		o.logger.Debug("not relevant", "url", rawURL)
		return nil
	}

	rec, err := o.intel.ExtractContent(ctx, page, topic)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		o.logger.Warn("extraction failed", "url", rawURL, "error", err)
		stats.Errors++
		return nil
	}

	if state.Dedup.IsSimilar(rec) {
		o.logger.Debug("similar content skipped", "url", rawURL, "title", rec.Title)
		stats.SimilarSkipped++
		return nil
	}

	location, err := o.store.Persist(ctx, rec)
	if err != nil {
		// Not persisted means not counted: the record is dropped and
		// its fingerprint never enters the index.
		o.logger.Warn("persist failed", "url", rawURL, "error", err)
		stats.Errors++
		return nil
	}

	stats.ContentFound++
	state.Quota.Increment(rawURL)
	state.Dedup.Add(model.NewFingerprint(rec))
	*contents = append(*contents, model.ContentSummary{
		Title:          rec.Title,
		URL:            rec.URL,
		Location:       location,
		DatePublished:  rec.DatePublished,
		RelevanceScore: rec.RelevanceScore,
	})

	o.logger.Info("content accepted",
		"title", rec.Title,
		"url", rawURL,
		"found", stats.ContentFound,
	)

	o.followUp(ctx, rec, page, rawURL, topic, state, frontier)
	return nil
}

// followUp pushes suggested queries and links derived from an accepted
// record. Suggestions are best-effort expansion, not content: any
// failure here, fatal included, falls back to an empty suggestion list
// and only costs the expansion. The record was already persisted, and
// the run keeps whatever frontier it has.
func (o *Orchestrator) followUp(ctx context.Context, rec *model.ContentRecord, page *model.Page, rawURL, topic string, state *State, frontier *Frontier) {
	queries, err := o.intel.SuggestQueries(ctx, rec, topic, state.Quota.Saturated())
	if err != nil {
		o.logger.Warn("query suggestion failed", "error", err)
	}
	for _, q := range queries {
		frontier.PushQuery(q)
	}

	if len(page.Links) == 0 {
		return
	}
	links, err := o.intel.SuggestLinks(ctx, rawURL, page.Links, topic)
	if err != nil {
		o.logger.Warn("link suggestion failed", "error", err)
	}
	for _, link := range links {
		frontier.PushCandidate(link)
	}
}

// processQuery issues one search and queues the resulting candidates.
func (o *Orchestrator) processQuery(ctx context.Context, query string, frontier *Frontier, stats *model.CrawlStats) error {
	stats.QueriesUsed++
	o.logger.Info("searching", "query", query, "queries_used", stats.QueriesUsed)

	urls, err := o.search.Search(ctx, query)
	if err != nil {
		if IsFatal(err) {
			return err
		}
		o.logger.Warn("search failed", "query", query, "error", err)
		stats.Errors++
		return nil
	}

	pushed := 0
	for _, u := range urls {
		if frontier.PushCandidate(u) {
			pushed++
		}
	}
	o.logger.Debug("candidates queued", "query", query, "pushed", pushed)
	return nil
}

// jitter pauses 500-1000ms between iterations so the request pattern
// does not look mechanical.
func (o *Orchestrator) jitter() {
	o.sleep(500*time.Millisecond + time.Duration(o.rand.Int63n(int64(500*time.Millisecond))))
}
