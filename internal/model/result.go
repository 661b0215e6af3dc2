package model

import (
	"sort"
	"time"

	"github.com/araddon/dateparse"
)

// ContentSummary is the per-record line item reported at the end of a
// run: enough to find the persisted record without loading it.
type ContentSummary struct {
	// Title is the record title.
	Title string `json:"title"`

	// URL is the page the record came from.
	URL string `json:"url"`

	// Location is the opaque storage location returned by the store.
	Location string `json:"location"`

	// DatePublished is the best-effort publication date, verbatim.
	DatePublished string `json:"date_published"`

	// RelevanceScore is the extractor's 1-10 relevance rating.
	RelevanceScore float64 `json:"relevance_score"`
}

// CrawlResult is everything a finished run reports: the topic, the run
// statistics, the per-domain distribution, and the persisted content
// summaries ranked by relevance and recency.
type CrawlResult struct {
	// Topic is the user's topic query.
	Topic string `json:"topic"`

	// SessionID identifies the run in the database. Empty when
	// persistence is disabled.
	SessionID string `json:"session_id,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the crawl.
	Duration time.Duration `json:"duration"`

	// Stats holds the run counters.
	Stats CrawlStats `json:"stats"`

	// DomainCounts maps each lowercased domain to its accepted-content
	// count.
	DomainCounts map[string]int `json:"domain_counts,omitempty"`

	// Contents lists the persisted records, ranked by RankContents.
	Contents []ContentSummary `json:"contents,omitempty"`
}

// RankContents sorts the content summaries in place: descending
// relevance score first, and within equal scores, items with a
// recognizable publication date before items without one.
//
// Date recognition is lenient: anything dateparse accepts counts as a
// date, so "2024-03-01", "March 2024", and "Jan 2, 2025" all rank
// ahead of "Unknown" or "Recent - 2024".
func (r *CrawlResult) RankContents() {
	sort.SliceStable(r.Contents, func(i, j int) bool {
		a, b := r.Contents[i], r.Contents[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		return hasRecognizedDate(a.DatePublished) && !hasRecognizedDate(b.DatePublished)
	})
}

// DomainDistribution returns the domain counts as a slice sorted by
// descending count, ties broken alphabetically for stable output.
func (r *CrawlResult) DomainDistribution() []DomainCount {
	dist := make([]DomainCount, 0, len(r.DomainCounts))
	for domain, count := range r.DomainCounts {
		dist = append(dist, DomainCount{Domain: domain, Count: count})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Domain < dist[j].Domain
	})
	return dist
}

// DomainCount pairs a domain with its accepted-content count.
type DomainCount struct {
	// Domain is the lowercased host.
	Domain string `json:"domain"`

	// Count is the number of records accepted from the domain.
	Count int `json:"count"`
}

// hasRecognizedDate reports whether s parses as a date.
func hasRecognizedDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := dateparse.ParseAny(s)
	return err == nil
}
