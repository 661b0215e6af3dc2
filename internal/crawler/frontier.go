package crawler

import (
	"github.com/nao1215/contentcrawler/internal/model"
)

// Frontier is the two-queue work scheduler: pending candidate URLs and
// pending search queries. Candidates always drain before queries, so
// the crawl prefers visiting discovered content over generating more
// of it. Within each queue the order is FIFO.
//
// Design decision: Two explicit slices, not a priority queue. The
// priority rule is a fixed ordering policy with exactly two levels;
// encoding it as a comparator would obscure it.
type Frontier struct {
	// state is consulted so that already-dispatched URLs are never
	// re-queued.
	state *State

	// candidates holds raw candidate URLs in discovery order.
	candidates []string

	// queued tracks the normalized form of every currently queued
	// candidate, preventing duplicate enqueues.
	queued map[string]bool

	// queries holds pending search queries in push order.
	queries []string

	// history records every query ever pushed, verbatim. Deduplication
	// is exact-text and case-sensitive; near-identical generated
	// queries (differing in casing or punctuation) are deliberately
	// NOT collapsed, since tightening this would change observed
	// query counts.
	history []string
}

// NewFrontier creates an empty frontier backed by the given state.
func NewFrontier(state *State) *Frontier {
	return &Frontier{
		state:  state,
		queued: make(map[string]bool),
	}
}

// PushCandidate queues a candidate URL. It is a no-op (returning
// false) when the URL, after normalization, has already been
// dispatched or is already queued.
func (f *Frontier) PushCandidate(rawURL string) bool {
	normalized := NormalizeURL(rawURL)
	if f.state.Visited(normalized) || f.queued[normalized] {
		return false
	}

	f.queued[normalized] = true
	f.candidates = append(f.candidates, rawURL)
	return true
}

// PushQuery queues a search query. It is a no-op (returning false)
// when the exact text already appears in the query history.
func (f *Frontier) PushQuery(text string) bool {
	for _, previous := range f.history {
		if previous == text {
			return false
		}
	}

	f.history = append(f.history, text)
	f.queries = append(f.queries, text)
	return true
}

// Pop returns the next work item: the oldest queued candidate if any
// exist, otherwise the oldest queued query. The second return is false
// when both queues are empty.
func (f *Frontier) Pop() (model.WorkItem, bool) {
	if len(f.candidates) > 0 {
		rawURL := f.candidates[0]
		f.candidates = f.candidates[1:]
		delete(f.queued, NormalizeURL(rawURL))
		return model.NewCandidateURL(rawURL), true
	}

	if len(f.queries) > 0 {
		query := f.queries[0]
		f.queries = f.queries[1:]
		return model.NewSearchQuery(query), true
	}

	return model.WorkItem{}, false
}

// IsEmpty reports whether both queues are empty.
func (f *Frontier) IsEmpty() bool {
	return len(f.candidates) == 0 && len(f.queries) == 0
}

// CandidateCount returns the number of queued candidate URLs.
func (f *Frontier) CandidateCount() int {
	return len(f.candidates)
}

// QueryCount returns the number of queued search queries.
func (f *Frontier) QueryCount() int {
	return len(f.queries)
}

// HistoryLen returns the number of queries ever pushed.
func (f *Frontier) HistoryLen() int {
	return len(f.history)
}
