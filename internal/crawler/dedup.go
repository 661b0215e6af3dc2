package crawler

import (
	"net/url"
	"sort"
	"strings"

	"github.com/nao1215/contentcrawler/internal/model"
)

// trackingParams are query parameters stripped during URL normalization.
// Any parameter whose name starts with "utm_" is also stripped.
var trackingParams = map[string]bool{
	"ref":    true,
	"source": true,
	"fbclid": true,
	"gclid":  true,
}

// NormalizeURL canonicalizes a URL so that trivially different spellings
// of the same resource compare equal:
//
//   - host and path lowercased
//   - fragment removed
//   - trailing slash stripped from the path
//   - tracking query parameters dropped (utm_*, ref, source, fbclid, gclid)
//   - remaining query parameters re-sorted by key
//
// Normalization is idempotent. A URL that fails to parse is returned
// unchanged; it will simply never match anything else.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(strings.ToLower(u.Path), "/")

	if u.RawQuery != "" {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for key := range q {
			keys = append(keys, key)
		}
		for _, key := range keys {
			lk := strings.ToLower(key)
			if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
				q.Del(key)
			}
		}
		// Encode sorts by key, giving a canonical query string.
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// DedupIndex answers "have we seen content like this before" by
// comparing a candidate record's fingerprint against every previously
// accepted fingerprint.
//
// The scan is O(n) per candidate. n is bounded by the max-content limit
// (typically tens of records), so a smarter index would buy nothing;
// an LSH bucket index is the upgrade path if that ever changes.
type DedupIndex struct {
	// threshold is the Jaccard similarity above which two summary
	// prefixes count as duplicates.
	threshold float64

	// fingerprints holds one fingerprint per accepted record, in
	// acceptance order. Append-only.
	fingerprints []model.Fingerprint
}

// DefaultSimilarityThreshold is the Jaccard cutoff for summary-prefix
// similarity.
const DefaultSimilarityThreshold = 0.7

// NewDedupIndex creates an empty index with the given Jaccard threshold.
// A threshold <= 0 uses the default.
func NewDedupIndex(threshold float64) *DedupIndex {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &DedupIndex{threshold: threshold}
}

// IsSimilar reports whether the record duplicates any previously added
// fingerprint. Four independent tests, any one sufficient:
//
//  1. exact title match (case-insensitive)
//  2. title containment, both titles longer than 20 characters
//  3. summary-prefix Jaccard similarity above the threshold
//  4. identical key-points hash
//
// IsSimilar does not add the record's fingerprint; call Add after the
// record is durably persisted.
func (d *DedupIndex) IsSimilar(rec *model.ContentRecord) bool {
	candidate := model.NewFingerprint(rec)
	for _, existing := range d.fingerprints {
		if d.matches(existing, candidate) {
			return true
		}
	}
	return false
}

// Add appends a fingerprint to the index. Fingerprints are never
// removed for the lifetime of a run.
func (d *DedupIndex) Add(fp model.Fingerprint) {
	d.fingerprints = append(d.fingerprints, fp)
}

// Len returns the number of stored fingerprints. The orchestrator keeps
// this equal to the content-found counter.
func (d *DedupIndex) Len() int {
	return len(d.fingerprints)
}

// matches applies the similarity tests to a fingerprint pair.
func (d *DedupIndex) matches(a, b model.Fingerprint) bool {
	if a.Title != "" && b.Title != "" {
		if a.Title == b.Title {
			return true
		}
		if len(a.Title) > 20 && len(b.Title) > 20 &&
			(strings.Contains(a.Title, b.Title) || strings.Contains(b.Title, a.Title)) {
			return true
		}
	}

	// Short prefixes produce noisy word sets; require substance on
	// both sides before trusting Jaccard.
	if len(a.SummaryPrefix) > 50 && len(b.SummaryPrefix) > 50 {
		if jaccardSimilarity(a.SummaryPrefix, b.SummaryPrefix) > d.threshold {
			return true
		}
	}

	if a.KeyPointsHash != 0 && a.KeyPointsHash == b.KeyPointsHash {
		return true
	}

	return false
}

// jaccardSimilarity computes word-set intersection over union for two
// strings. Returns 0 when either side has no words.
func jaccardSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection) / float64(union)
}

// wordSet splits a string into its unique whitespace-separated words.
func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// sortedKeys returns a map's keys in sorted order. Used where stable
// iteration matters for logging and prompts.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
