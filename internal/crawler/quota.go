package crawler

import (
	"net/url"
	"strings"
)

// DefaultMaxPerDomain is the default per-domain accepted-content ceiling.
const DefaultMaxPerDomain = 5

// DomainQuota tracks accepted-content counts per domain and enforces a
// fairness ceiling so no single source dominates the results.
//
// Admit is a point-in-time check; it reserves nothing. The caller must
// pair the check with Increment inside the same admission decision.
// That pairing is trivially safe in this sequential core, but a
// concurrent port must treat admit+increment as one critical section.
type DomainQuota struct {
	// counts maps lowercased host to accepted-content count.
	// Counts are only ever incremented.
	counts map[string]int

	// max is the per-domain ceiling.
	max int
}

// NewDomainQuota creates a quota tracker with the given ceiling.
// A ceiling <= 0 uses the default.
func NewDomainQuota(maxPerDomain int) *DomainQuota {
	if maxPerDomain <= 0 {
		maxPerDomain = DefaultMaxPerDomain
	}
	return &DomainQuota{
		counts: make(map[string]int),
		max:    maxPerDomain,
	}
}

// Admit reports whether the URL's domain is still under its ceiling.
// A URL that fails to parse is admitted; the fetch will surface the
// real problem.
func (q *DomainQuota) Admit(rawURL string) bool {
	domain := domainOf(rawURL)
	if domain == "" {
		return true
	}
	return q.counts[domain] < q.max
}

// Increment records one accepted content record for the URL's domain.
// Call only after the record is durably persisted.
func (q *DomainQuota) Increment(rawURL string) {
	domain := domainOf(rawURL)
	if domain == "" {
		return
	}
	q.counts[domain]++
}

// Count returns the accepted-content count for a domain.
func (q *DomainQuota) Count(domain string) int {
	return q.counts[strings.ToLower(domain)]
}

// Counts returns a copy of the per-domain counts.
func (q *DomainQuota) Counts() map[string]int {
	out := make(map[string]int, len(q.counts))
	for domain, count := range q.counts {
		out[domain] = count
	}
	return out
}

// Saturated returns the domains within one accept of their ceiling, in
// sorted order. Query suggestion uses this to steer new searches toward
// fresh sources.
func (q *DomainQuota) Saturated() []string {
	var saturated []string
	for _, domain := range sortedKeys(q.counts) {
		if q.counts[domain] >= q.max-1 {
			saturated = append(saturated, domain)
		}
	}
	return saturated
}

// domainOf extracts the lowercased host from a URL, or "" when the URL
// does not parse or has no host.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
