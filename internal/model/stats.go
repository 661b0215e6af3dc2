package model

// CrawlStats holds the mutable counters for one crawl invocation.
// A fresh CrawlStats is created per run and discarded at the end.
//
// Duplicate, similar-content, and quota skips are expected admission
// outcomes, not failures; only Errors counts genuine per-item failures.
type CrawlStats struct {
	// QueriesUsed counts search queries issued.
	QueriesUsed int `json:"search_queries_used"`

	// PagesVisited counts candidate URLs dispatched for fetching.
	// Incremented at dispatch time, before the fetch outcome is known.
	PagesVisited int `json:"pages_visited"`

	// ContentFound counts content records durably persisted.
	// Always equals the length of the fingerprint list.
	ContentFound int `json:"content_found"`

	// DuplicatesSkipped counts candidates whose normalized URL was
	// already dispatched this run.
	DuplicatesSkipped int `json:"duplicates_skipped"`

	// SimilarSkipped counts extracted records rejected by the
	// fingerprint similarity scan.
	SimilarSkipped int `json:"similar_content_skipped"`

	// QuotaSkipped counts candidates rejected by the per-domain ceiling.
	QuotaSkipped int `json:"domain_quota_exceeded"`

	// Errors counts per-item failures: fetch errors, classifier errors,
	// and extraction errors. None of these abort the crawl.
	Errors int `json:"errors"`
}
