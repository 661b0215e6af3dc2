package model

// WorkKind discriminates the two kinds of frontier work.
type WorkKind int

const (
	// KindSearchQuery identifies a pending search query.
	KindSearchQuery WorkKind = iota

	// KindCandidateURL identifies a discovered URL awaiting a visit.
	KindCandidateURL
)

// String returns the kind name for logging.
func (k WorkKind) String() string {
	switch k {
	case KindSearchQuery:
		return "search_query"
	case KindCandidateURL:
		return "candidate_url"
	default:
		return "unknown"
	}
}

// WorkItem is one unit of frontier work: either a search query to issue
// or a candidate URL to visit. Exactly one of Query and URL is set,
// according to Kind.
//
// Design decision: We use a small tagged struct rather than an interface
// with two implementations because:
//  1. The orchestrator switches on the kind in one place
//  2. Both payloads are plain strings
//  3. It keeps frontier tests table-driven
type WorkItem struct {
	// Kind identifies which payload field is meaningful.
	Kind WorkKind

	// Query is the search query text (KindSearchQuery).
	Query string

	// URL is the candidate URL (KindCandidateURL).
	URL string
}

// NewSearchQuery creates a search-query work item.
func NewSearchQuery(text string) WorkItem {
	return WorkItem{Kind: KindSearchQuery, Query: text}
}

// NewCandidateURL creates a candidate-URL work item.
func NewCandidateURL(url string) WorkItem {
	return WorkItem{Kind: KindCandidateURL, URL: url}
}
