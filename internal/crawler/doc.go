// Package crawler implements the crawl-frontier and deduplication core:
// the state machine that drives a topic crawl.
//
// The core owns five cooperating pieces:
//
//   - Limiter: minimum inter-call spacing and exponential backoff retry
//     around every external service call
//   - DedupIndex: URL normalization and content-fingerprint similarity
//   - DomainQuota: per-domain accepted-content fairness ceiling
//   - Frontier: two-queue work scheduler (candidate URLs before queries)
//   - Orchestrator: the Seeding -> Working -> Expanding -> Done loop
//
// The core is intentionally a single sequential worker. It performs no
// I/O of its own: fetching, searching, AI classification/extraction, and
// persistence are collaborator interfaces implemented elsewhere.
package crawler
