package model

// SearchResult is one entry returned by the search provider before
// ranking: the candidate URL plus the display fields the ranker judges
// it by.
type SearchResult struct {
	// Title is the result title as shown by the search engine.
	Title string `json:"title"`

	// Link is the result URL.
	Link string `json:"link"`

	// Snippet is the search engine's excerpt for the result.
	Snippet string `json:"snippet,omitempty"`
}
