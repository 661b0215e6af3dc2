package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/contentcrawler/internal/model"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStats(md, result)
	w.writeDomains(md, result)
	w.writeContents(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Content Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Topic", result.Topic},
		{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", result.Duration.String()},
	}
	if result.SessionID != "" {
		rows = append(rows, []string{"Session", "`" + result.SessionID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStats writes the run statistics section.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Crawl Statistics")
	md.PlainText("")

	stats := result.Stats
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Search queries used", strconv.Itoa(stats.QueriesUsed)},
			{"Pages visited", strconv.Itoa(stats.PagesVisited)},
			{"Content found", strconv.Itoa(stats.ContentFound)},
			{"Duplicates skipped", strconv.Itoa(stats.DuplicatesSkipped)},
			{"Similar content skipped", strconv.Itoa(stats.SimilarSkipped)},
			{"Domain quota skipped", strconv.Itoa(stats.QuotaSkipped)},
			{"Errors", strconv.Itoa(stats.Errors)},
		},
	})
	md.PlainText("")

	switch {
	case stats.ContentFound == 0:
		md.Warningf("No content collected. Consider a broader topic or a larger page budget.")
	case stats.Errors > stats.ContentFound:
		md.Note(fmt.Sprintf("The crawl hit more errors (%d) than accepted records (%d); results may be thin.", stats.Errors, stats.ContentFound))
	default:
		md.Tip(fmt.Sprintf("Collected %d records across %d pages.", stats.ContentFound, stats.PagesVisited))
	}
	md.PlainText("")
}

// writeDomains writes the per-domain distribution section.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, result *model.CrawlResult) {
	dist := result.DomainDistribution()
	if len(dist) == 0 {
		return
	}

	md.H2("Domain Distribution")
	md.PlainText("")

	rows := make([][]string, len(dist))
	for i, dc := range dist {
		rows[i] = []string{dc.Domain, strconv.Itoa(dc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Records"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(dist) > 1 {
		w.writePieChart(md, dist)
	}
}

// writePieChart writes a mermaid pie chart for the domain distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, dist []model.DomainCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Records per Domain"),
		piechart.WithShowData(true),
	)
	for _, dc := range dist {
		chart.LabelAndIntValue(dc.Domain, uint64(dc.Count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeContents writes the collected content table, ranked by relevance
// and recency.
func (w *MarkdownWriter) writeContents(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Collected Content")
	md.PlainText("")

	if len(result.Contents) == 0 {
		md.PlainText("No content collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Contents))
	for i, c := range result.Contents {
		date := c.DatePublished
		if date == "" {
			date = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(c.Title, 60),
			"[link](" + c.URL + ")",
			date,
			strconv.FormatFloat(c.RelevanceScore, 'f', 0, 64),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL", "Published", "Relevance"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [contentcrawler](https://github.com/nao1215/contentcrawler)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
