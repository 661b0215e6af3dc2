package model

// Page represents a fetched web page with the information the crawler
// needs downstream: the readable text for AI analysis, the outbound links
// for frontier expansion, and any publication date found in metadata.
//
// Design decision: We keep both the raw HTML and the distilled text because:
//  1. The relevance classifier and extractor work on distilled text
//  2. Link extraction needs the full HTML
//  3. The text is what gets truncated for prompts, not the HTML
type Page struct {
	// URL is the URL the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title, preferring the readability-extracted title
	// over the raw <title> tag.
	Title string `json:"title,omitempty"`

	// HTML is the raw page markup, truncated to MaxHTMLSize.
	HTML string `json:"-"`

	// Text is the readable main-content text with navigation and
	// boilerplate stripped, truncated to MaxTextSize.
	Text string `json:"text,omitempty"`

	// Links contains absolute outbound URLs discovered on the page,
	// with fragments and tracking parameters already removed.
	Links []string `json:"links,omitempty"`

	// MetaDate is the publication or modification date found in the
	// page's meta tags, verbatim. Empty when no date meta tag exists.
	MetaDate string `json:"meta_date,omitempty"`

	// Byline is the author attribution extracted from the page, if any.
	Byline string `json:"byline,omitempty"`
}

// MaxHTMLSize caps the raw markup retained per page.
// Larger documents are truncated; link extraction has already run
// against the full body by the time the cap applies.
const MaxHTMLSize = 2 * 1024 * 1024 // 2 MB

// MaxTextSize caps the distilled text retained per page.
// Prompts truncate further, so keeping more than this buys nothing.
const MaxTextSize = 256 * 1024 // 256 KB

// Truncate enforces MaxHTMLSize and MaxTextSize on the page.
// Call after populating HTML and Text.
func (p *Page) Truncate() {
	if len(p.HTML) > MaxHTMLSize {
		p.HTML = p.HTML[:MaxHTMLSize]
	}
	if len(p.Text) > MaxTextSize {
		p.Text = p.Text[:MaxTextSize]
	}
}
