// Package main provides the entry point for the contentcrawler CLI.
//
// contentcrawler discovers and collects fresh web content about a topic.
// It combines programmable web search, polite HTTP fetching, and LLM-based
// relevance judgment to build a deduplicated, ranked content digest.
//
// Usage:
//
//	contentcrawler crawl "quantum computing"
//	contentcrawler crawl --max-content 10 --markdown "rust async runtimes"
//
// See --help for all available options.
package main

// main is the entry point for contentcrawler.
func main() {
	Execute()
}
