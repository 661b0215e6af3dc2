package model

import (
	"hash/fnv"
	"strings"
)

// SummaryPrefixLength is the number of leading summary characters
// retained in a fingerprint for similarity comparison.
const SummaryPrefixLength = 100

// Fingerprint is a compact, lossy summary of a content record used for
// cheap similarity comparison. Fingerprints are immutable once created
// and are appended to a flat list that only grows for the lifetime of
// a run.
type Fingerprint struct {
	// Title is the record title, lowercased.
	Title string

	// SummaryLength is the length of the full (lowercased) summary.
	SummaryLength int

	// SummaryPrefix is the first SummaryPrefixLength characters of the
	// lowercased summary.
	SummaryPrefix string

	// KeyPointsHash is a coarse hash of the concatenated key-points
	// text. Zero when the record has no key points; a zero hash never
	// matches another fingerprint.
	KeyPointsHash uint32
}

// NewFingerprint derives a fingerprint from a content record.
func NewFingerprint(rec *ContentRecord) Fingerprint {
	title := strings.ToLower(rec.Title)
	summary := strings.ToLower(rec.Summary)

	prefix := summary
	if len(prefix) > SummaryPrefixLength {
		prefix = prefix[:SummaryPrefixLength]
	}

	return Fingerprint{
		Title:         title,
		SummaryLength: len(summary),
		SummaryPrefix: prefix,
		KeyPointsHash: hashKeyPoints(rec.KeyPoints),
	}
}

// hashKeyPoints computes a coarse FNV-1a hash over the concatenated,
// lowercased key-points text. Returns 0 for an empty list so that two
// records without key points never collide on this field.
func hashKeyPoints(points []string) uint32 {
	if len(points) == 0 {
		return 0
	}

	h := fnv.New32a()
	for _, p := range points {
		_, _ = h.Write([]byte(strings.ToLower(p)))
		_, _ = h.Write([]byte{'\n'})
	}

	sum := h.Sum32()
	if sum == 0 {
		// Reserve 0 for "no key points".
		sum = 1
	}
	return sum
}
