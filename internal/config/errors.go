package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTopic is returned when no crawl topic is specified.
	ErrNoTopic = errors.New("no topic specified: provide a topic with --topic or as an argument")

	// ErrInvalidMaxContent is returned when the content target is not positive.
	ErrInvalidMaxContent = errors.New("invalid max content: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxPerDomain is returned when the per-domain ceiling is
	// not positive.
	ErrInvalidMaxPerDomain = errors.New("invalid max per domain: must be positive")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMissingOpenAIKey is returned when no OpenAI API key is
	// configured. Set OPENAI_API_KEY or the openai_api_key config entry.
	ErrMissingOpenAIKey = errors.New("missing OpenAI API key: set OPENAI_API_KEY")

	// ErrMissingSearchCredentials is returned when the Google Custom
	// Search credentials are incomplete. Both the API key and the search
	// engine ID are required.
	ErrMissingSearchCredentials = errors.New("missing search credentials: set GOOGLE_CSE_API_KEY and GOOGLE_CSE_ID")
)
