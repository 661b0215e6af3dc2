// Package main provides the entry point for the contentcrawler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for contentcrawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contentcrawler",
		Short: "Topic-driven web content discovery crawler",
		Long: `contentcrawler discovers and collects fresh web content about a topic.

It seeds a crawl from programmable web search, fetches and parses candidate
pages, asks an LLM to judge relevance and extract structured content, and
produces a deduplicated digest ranked by relevance and recency.

Crawl results are saved to a local SQLite database so past sessions can be
reviewed with the history command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
