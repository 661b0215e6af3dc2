package crawler

import (
	"errors"
	"fmt"
)

// ErrRateLimited marks an error caused by rate limiting or quota
// exhaustion at an external service. Collaborators wrap their provider
// errors with this sentinel so the Limiter can choose exponential
// backoff over the fixed retry delay.
var ErrRateLimited = errors.New("rate limit exceeded")

// ExternalServiceError reports that an external call failed even after
// the Limiter's full retry budget. This is the only fatal error in the
// crawl: it unwinds out of the orchestrator loop and aborts the run.
type ExternalServiceError struct {
	// Class is the call class whose retry budget was exhausted.
	Class CallClass

	// Attempts is the total number of attempts made, including the
	// initial call.
	Attempts int

	// Err is the last error returned by the operation.
	Err error
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s call failed after %d attempts: %v", e.Class, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries an ExternalServiceError anywhere
// in its chain. Per-item errors are swallowed and counted; fatal errors
// abort the crawl.
func IsFatal(err error) bool {
	var ese *ExternalServiceError
	return errors.As(err, &ese)
}
