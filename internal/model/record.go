package model

import (
	"net/url"
	"strings"
	"time"
)

// ContentRecord is the structured output of content extraction for one
// accepted page. It is created once per accepted URL, is immutable after
// creation, and is persisted exactly once.
type ContentRecord struct {
	// URL is the page the record was extracted from.
	URL string `json:"url"`

	// Title is the main title of the content.
	Title string `json:"title"`

	// Summary is a concise summary of the key information.
	Summary string `json:"summary,omitempty"`

	// KeyPoints lists the most important points or findings.
	KeyPoints []string `json:"key_points,omitempty"`

	// DatePublished is the publication or last-update date, best effort.
	// Metadata dates are preferred; otherwise the extractor estimates.
	// "Unknown" when neither source produced a date.
	DatePublished string `json:"date_published,omitempty"`

	// Author is the author attribution, if available.
	Author string `json:"author,omitempty"`

	// ContentType describes the kind of content (article, blog post,
	// news, research, and so on).
	ContentType string `json:"content_type,omitempty"`

	// Categories lists the topics this content covers.
	Categories []string `json:"categories,omitempty"`

	// RelevanceScore rates relevance and recency to the topic on a
	// 1-10 scale, as judged by the extractor.
	RelevanceScore float64 `json:"relevance_score,omitempty"`

	// FullText is the complete main content text.
	FullText string `json:"full_text,omitempty"`

	// SearchQuery is the topic query that led the crawl to this page.
	SearchQuery string `json:"search_query"`

	// CrawledAt is when the record was created.
	CrawledAt time.Time `json:"crawled_at"`

	// RawAnalysis holds the unparsed extractor response when the
	// structured fields could not be decoded. A record with RawAnalysis
	// set is a best-effort fallback, not a discard.
	RawAnalysis string `json:"raw_analysis,omitempty"`
}

// Domain returns the record's lowercased host, or "" when the URL
// does not parse.
func (r *ContentRecord) Domain() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// HasDate reports whether the record carries a usable publication date.
// The extractor writes "Unknown" (or close variants) when it cannot
// determine one.
func (r *ContentRecord) HasDate() bool {
	switch strings.ToLower(strings.TrimSpace(r.DatePublished)) {
	case "", "unknown", "unknown date", "not found", "n/a":
		return false
	}
	return true
}
