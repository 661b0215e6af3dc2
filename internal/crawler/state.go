package crawler

// State is the mutable crawl state for one run: the visited-URL set,
// the per-domain quota counters, and the content-fingerprint index.
//
// Design decision: These three live together in one explicitly passed
// object rather than as fields scattered across the orchestrator
// because:
//  1. They form the admission-control trio and change together
//  2. A run's state is constructed at the start and discarded at the end
//  3. The trio is testable in isolation from the crawl loop
type State struct {
	// visited holds normalized URLs that have been dispatched.
	// An entry is added at dispatch time, before the fetch, so a URL
	// can never be dispatched twice in one run.
	visited map[string]bool

	// Quota enforces the per-domain fairness ceiling.
	Quota *DomainQuota

	// Dedup detects near-duplicate content via fingerprints.
	Dedup *DedupIndex
}

// NewState creates fresh crawl state for a run.
func NewState(maxPerDomain int, similarityThreshold float64) *State {
	return &State{
		visited: make(map[string]bool),
		Quota:   NewDomainQuota(maxPerDomain),
		Dedup:   NewDedupIndex(similarityThreshold),
	}
}

// Visited reports whether the normalized URL has been dispatched.
func (s *State) Visited(normalizedURL string) bool {
	return s.visited[normalizedURL]
}

// MarkVisited records a normalized URL as dispatched.
func (s *State) MarkVisited(normalizedURL string) {
	s.visited[normalizedURL] = true
}

// VisitedCount returns the number of dispatched URLs.
func (s *State) VisitedCount() int {
	return len(s.visited)
}
