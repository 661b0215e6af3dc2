package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/contentcrawler/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeStats(&sb, result)
	w.writeDomains(&sb, result)
	w.writeContents(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      CONTENT CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Topic:      %s\n", result.Topic))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", result.Duration.Round(100*time.Millisecond)))
	if result.SessionID != "" {
		sb.WriteString(fmt.Sprintf("Session:    %s\n", result.SessionID))
	}
	sb.WriteString("\n")
}

// writeStats writes the run statistics section.
func (w *SimpleWriter) writeStats(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	stats := result.Stats
	sb.WriteString(fmt.Sprintf("  Search queries used:     %d\n", stats.QueriesUsed))
	sb.WriteString(fmt.Sprintf("  Pages visited:           %d\n", stats.PagesVisited))
	sb.WriteString(fmt.Sprintf("  Content found:           %d\n", stats.ContentFound))
	sb.WriteString(fmt.Sprintf("  Duplicates skipped:      %d\n", stats.DuplicatesSkipped))
	sb.WriteString(fmt.Sprintf("  Similar content skipped: %d\n", stats.SimilarSkipped))
	sb.WriteString(fmt.Sprintf("  Domain quota skipped:    %d\n", stats.QuotaSkipped))
	sb.WriteString(fmt.Sprintf("  Errors:                  %d\n", stats.Errors))
	sb.WriteString("\n")
}

// writeDomains writes the per-domain distribution section.
func (w *SimpleWriter) writeDomains(sb *strings.Builder, result *model.CrawlResult) {
	dist := result.DomainDistribution()
	if len(dist) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DOMAIN DISTRIBUTION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(dist) == 0 {
		sb.WriteString("  No content collected\n")
	} else {
		for _, dc := range dist {
			sb.WriteString(fmt.Sprintf("  %-40s %d\n", dc.Domain, dc.Count))
		}
	}
	sb.WriteString("\n")
}

// writeContents writes the collected content section, ranked.
func (w *SimpleWriter) writeContents(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Contents) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("COLLECTED CONTENT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(result.Contents) == 0 {
		sb.WriteString("  No content collected\n\n")
		return
	}

	for i, c := range result.Contents {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, c.Title))
		sb.WriteString(fmt.Sprintf("     URL:       %s\n", c.URL))
		sb.WriteString(fmt.Sprintf("     Relevance: %.0f/10\n", c.RelevanceScore))
		if c.DatePublished != "" {
			sb.WriteString(fmt.Sprintf("     Published: %s\n", c.DatePublished))
		}
		if w.verbose && c.Location != "" {
			sb.WriteString(fmt.Sprintf("     Stored at: %s\n", c.Location))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by contentcrawler\n")
	sb.WriteString("https://github.com/nao1215/contentcrawler\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
