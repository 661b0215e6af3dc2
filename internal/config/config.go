package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen for polite crawling within typical API rate limits.
const (
	// DefaultMaxContent is the accepted-content target per crawl.
	// Enough for a useful digest without burning the API budget.
	DefaultMaxContent = 15

	// DefaultMaxPages is the maximum number of pages visited per crawl.
	// This bounds runtime and API spend even when little content is found.
	DefaultMaxPages = 50

	// DefaultMaxPerDomain is the per-domain accepted-content ceiling.
	// Keeps a single prolific site from dominating the results.
	DefaultMaxPerDomain = 5

	// DefaultSimilarityThreshold is the Jaccard cutoff for treating two
	// summaries as near-duplicates.
	DefaultSimilarityThreshold = 0.7

	// DefaultFetchTimeout is the per-page HTTP timeout.
	// Ordinary sites answer well within this; slower ones are not worth
	// stalling the crawl for.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultLLMModel is the chat model used for relevance judgment,
	// extraction, and suggestion.
	DefaultLLMModel = "gpt-4o-mini"

	// AppName is the application name used for XDG directory paths.
	AppName = "contentcrawler"
)

// Config holds all configuration options for a crawl.
// This struct is designed to be populated from CLI flags, the config
// file, and environment variables, then passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Topic is the subject the crawl researches. Required.
	Topic string

	// MaxContent is the accepted-content target per crawl.
	MaxContent int

	// MaxPages is the maximum number of pages visited per crawl.
	MaxPages int

	// MaxPerDomain is the per-domain accepted-content ceiling.
	MaxPerDomain int

	// SimilarityThreshold is the Jaccard cutoff for near-duplicate
	// summaries. Zero means use the default.
	SimilarityThreshold float64

	// FetchTimeout is the per-page HTTP timeout.
	FetchTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Set to 0 for the default.
	MaxBodySize int64

	// LLMModel is the chat model name used for all generative calls.
	LLMModel string

	// OpenAIAPIKey authenticates generative calls. Usually supplied via
	// the OPENAI_API_KEY environment variable.
	OpenAIAPIKey string

	// GoogleAPIKey authenticates Custom Search API calls. Usually
	// supplied via the GOOGLE_CSE_API_KEY environment variable.
	GoogleAPIKey string

	// GoogleCSEID is the Custom Search Engine identifier. Usually
	// supplied via the GOOGLE_CSE_ID environment variable.
	GoogleCSEID string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .contentcrawler in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., limits, timeouts).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxContent:          DefaultMaxContent,
		MaxPages:            DefaultMaxPages,
		MaxPerDomain:        DefaultMaxPerDomain,
		SimilarityThreshold: DefaultSimilarityThreshold,
		FetchTimeout:        DefaultFetchTimeout,
		MaxBodySize:         DefaultMaxBodySize,
		LLMModel:            DefaultLLMModel,
		DBDir:               XDGDataDir(),
		SaveToDB:            true,
	}
}

// XDGDataDir returns the XDG data directory for the crawler.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/contentcrawler
// On macOS: ~/Library/Application Support/contentcrawler
// On Windows: %LOCALAPPDATA%\contentcrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Topic == "" {
		return ErrNoTopic
	}

	if c.MaxContent <= 0 {
		return ErrInvalidMaxContent
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxPerDomain <= 0 {
		return ErrInvalidMaxPerDomain
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.OpenAIAPIKey == "" {
		return ErrMissingOpenAIKey
	}

	if c.GoogleAPIKey == "" || c.GoogleCSEID == "" {
		return ErrMissingSearchCredentials
	}

	return nil
}
