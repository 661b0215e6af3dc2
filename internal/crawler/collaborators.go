package crawler

import (
	"context"

	"github.com/nao1215/contentcrawler/internal/model"
)

// Fetcher retrieves a single page. A fetch failure is a per-item error:
// the orchestrator counts it and moves on.
type Fetcher interface {
	// Fetch downloads and parses the page at url.
	Fetch(ctx context.Context, url string) (*model.Page, error)
}

// SearchService turns a query into candidate URLs. Implementations
// return an empty slice on provider failure rather than an error; an
// error return is reserved for fatal conditions (retry budget
// exhaustion inside the service's own AI ranking call).
type SearchService interface {
	// Search issues the query and returns ranked candidate URLs.
	Search(ctx context.Context, query string) ([]string, error)
}

// Intelligence is the generative collaborator: relevance judgment,
// structured extraction, and query/link suggestion, all delegated to an
// external model. Implementations must tolerate malformed responses;
// extraction falls back to a best-effort record instead of failing.
type Intelligence interface {
	// ClassifyRelevance judges whether the page text is substantial,
	// relevant, recent content for the topic.
	ClassifyRelevance(ctx context.Context, pageURL, text, topic string) (bool, error)

	// ExtractContent produces a structured content record for the page.
	ExtractContent(ctx context.Context, page *model.Page, topic string) (*model.ContentRecord, error)

	// SuggestQueries generates follow-up search queries from an
	// accepted record, steering away from the saturated domains.
	// Falls back to an empty slice on non-fatal failure.
	SuggestQueries(ctx context.Context, rec *model.ContentRecord, topic string, saturated []string) ([]string, error)

	// SuggestLinks picks the links on the page most likely to lead to
	// more relevant content. Falls back to an empty slice on non-fatal
	// failure.
	SuggestLinks(ctx context.Context, pageURL string, links []string, topic string) ([]string, error)
}

// Store persists an accepted content record exactly once and returns an
// opaque storage location for the run summary. A persistence failure
// means the record is not counted as found.
type Store interface {
	// Persist durably saves the record.
	Persist(ctx context.Context, rec *model.ContentRecord) (string, error)
}
