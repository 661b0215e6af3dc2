package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/nao1215/contentcrawler/internal/model"
)

// dateMetaSelectors are the meta tags consulted for a publication date,
// in priority order. The first non-empty content attribute wins.
var dateMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="og:updated_time"]`,
	`meta[property="datePublished"]`,
	`meta[property="dateModified"]`,
	`meta[name="date"]`,
	`meta[name="pubdate"]`,
	`meta[name="publication_date"]`,
	`meta[name="lastmod"]`,
	`meta[itemprop="datePublished"]`,
	`meta[itemprop="dateModified"]`,
	`meta[itemprop="dateCreated"]`,
}

// parsePage fills the page's Title, Text, Byline, MetaDate, and Links
// from its raw HTML. Each extraction step is independent; a failure in
// one leaves the others intact, and only the first error is reported.
func parsePage(page *model.Page) error {
	base, err := url.Parse(page.URL)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	var firstErr error

	article, err := readability.FromReader(strings.NewReader(page.HTML), base)
	if err != nil {
		firstErr = fmt.Errorf("readability failed: %w", err)
	} else {
		page.Title = article.Title
		page.Text = strings.TrimSpace(article.TextContent)
		page.Byline = article.Byline
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("document parse failed: %w", err)
		}
	} else {
		page.MetaDate = extractMetaDate(doc)
		if page.Title == "" {
			page.Title = strings.TrimSpace(doc.Find("title").First().Text())
		}
	}

	links, err := extractLinks(page.HTML, base)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("link extraction failed: %w", err)
		}
	} else {
		page.Links = links
	}

	return firstErr
}

// extractMetaDate returns the first publication date found in the
// document's meta tags, verbatim.
func extractMetaDate(doc *goquery.Document) string {
	for _, selector := range dateMetaSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if date := strings.TrimSpace(content); date != "" {
				return date
			}
		}
	}
	return ""
}

// extractLinks walks the markup and returns the absolute http(s) URLs
// of every anchor, resolved against the page URL, with fragments
// dropped and duplicates removed. Order follows document order.
func extractLinks(rawHTML string, base *url.URL) ([]string, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if link, ok := resolveLink(base, attr.Val); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return links, nil
}

// resolveLink turns an href into an absolute http(s) URL without a
// fragment. Returns false for anything else (mailto:, javascript:,
// empty or unparseable hrefs, and pure fragment links).
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""

	return abs.String(), true
}
