package ai

import (
	"fmt"
	"strings"

	"github.com/nao1215/contentcrawler/internal/model"
)

// Prompt text budgets. Page text is truncated before it enters a
// prompt; the record's FullText keeps the untruncated version.
const (
	// relevanceTextLimit caps the page text sent for relevance
	// classification. A judgment call needs far less than extraction.
	relevanceTextLimit = 3000

	// extractionTextLimit caps the page text sent for extraction.
	extractionTextLimit = 8000

	// maxLinksInPrompt caps the number of page links offered to the
	// link picker.
	maxLinksInPrompt = 20
)

// relevancePrompt asks for a strict YES/NO judgment on a page.
func relevancePrompt(pageURL, text, topic string) string {
	return fmt.Sprintf(`You are evaluating a web page for a research crawl on the topic: %q

URL: %s

Page text (may be truncated):
%s

Is this page substantial, relevant content about the topic (not a navigation page, login wall, error page, or advertisement)? Recent material is preferred over outdated material.

Answer with YES or NO on the first line, optionally followed by a short reason.`, topic, pageURL, truncate(text, relevanceTextLimit))
}

// extractionPrompt asks for a structured JSON record of the page.
func extractionPrompt(page *model.Page, topic string) string {
	var meta strings.Builder
	if page.MetaDate != "" {
		fmt.Fprintf(&meta, "Publication date from page metadata: %s\n", page.MetaDate)
	}
	if page.Byline != "" {
		fmt.Fprintf(&meta, "Author from page metadata: %s\n", page.Byline)
	}

	return fmt.Sprintf(`Extract structured information from this web page for a research crawl on the topic: %q

URL: %s
%s
Page text (may be truncated):
%s

Respond with a single JSON object, no markdown, with exactly these keys:
{
  "title": "main title of the content",
  "summary": "concise summary of the key information (2-4 sentences)",
  "key_points": ["the most important points or findings"],
  "date_published": "publication or last-update date, or \"Unknown\"",
  "author": "author attribution, or empty string",
  "content_type": "article, blog post, news, research, documentation, or other",
  "categories": ["topics this content covers"],
  "relevance_score": 7
}

relevance_score rates relevance and recency to the topic from 1 to 10.`, topic, page.URL, meta.String(), truncate(page.Text, extractionTextLimit))
}

// suggestQueriesPrompt asks for follow-up searches derived from an
// accepted record, steered away from saturated domains.
func suggestQueriesPrompt(rec *model.ContentRecord, topic string, saturated []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A research crawl on the topic %q just accepted this content:\n\n", topic)
	fmt.Fprintf(&sb, "Title: %s\n", rec.Title)
	if rec.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", rec.Summary)
	}
	if len(rec.KeyPoints) > 0 {
		sb.WriteString("Key points:\n")
		for _, p := range rec.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}

	sb.WriteString("\nSuggest up to 3 follow-up web search queries that would surface related content not already covered above.")
	if len(saturated) > 0 {
		fmt.Fprintf(&sb, " We already have enough content from these sites, so prefer queries likely to surface OTHER sources: %s.", strings.Join(saturated, ", "))
	}
	sb.WriteString("\n\nRespond with a JSON array of query strings, no markdown.")

	return sb.String()
}

// suggestLinksPrompt asks which of a page's outbound links to follow.
func suggestLinksPrompt(pageURL string, links []string, topic string) string {
	if len(links) > maxLinksInPrompt {
		links = links[:maxLinksInPrompt]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "A research crawl on the topic %q is on this page: %s\n\n", topic, pageURL)
	sb.WriteString("The page links to:\n")
	for _, link := range links {
		fmt.Fprintf(&sb, "- %s\n", link)
	}
	sb.WriteString("\nPick up to 3 links most likely to lead to substantial, relevant content about the topic. Skip navigation, login, and social links.\n\nRespond with a JSON array of the chosen URLs exactly as listed, no markdown.")

	return sb.String()
}

// rankResultsPrompt asks for search results reordered by likely value.
func rankResultsPrompt(topic, query string, results []model.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A research crawl on the topic %q ran the web search %q and got these results:\n\n", topic, query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Snippet)
		}
	}
	sb.WriteString("\nOrder the result numbers from most to least promising as substantial, recent content about the topic.\n\nRespond with a JSON array of the numbers, no markdown. Omit results that are clearly useless.")

	return sb.String()
}

// truncate cuts s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
