package crawler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// CallClass distinguishes the two kinds of external calls the Limiter
// paces. Each class keeps its own last-call timestamp, so a generative
// call never delays a search call and vice versa.
type CallClass int

const (
	// ClassGenerative covers calls to the generative model: relevance
	// classification, extraction, ranking, and suggestion. Higher cost,
	// retried with exponential backoff on rate-limit errors.
	ClassGenerative CallClass = iota

	// ClassSearch covers search-engine API calls. Fixed spacing only;
	// failures are not retried here (the search service falls back to
	// an empty result list).
	ClassSearch
)

// String returns the class name for logging.
func (c CallClass) String() string {
	switch c {
	case ClassGenerative:
		return "generative"
	case ClassSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Default pacing values. The generative model tolerates far fewer
// requests per minute than the search API, hence the wider spacing and
// the backoff machinery.
const (
	// DefaultGenerativeInterval is the minimum spacing between
	// generative calls.
	DefaultGenerativeInterval = 2 * time.Second

	// DefaultSearchInterval is the minimum spacing between search calls.
	DefaultSearchInterval = 1 * time.Second

	// DefaultBackoffFloor is the initial backoff after a rate-limit
	// error, and the value backoff resets to after any success.
	DefaultBackoffFloor = 5 * time.Second

	// DefaultBackoffCeiling caps the doubling backoff.
	DefaultBackoffCeiling = 60 * time.Second

	// DefaultRetryDelay is the fixed wait before retrying a generative
	// call that failed for a reason other than rate limiting.
	DefaultRetryDelay = 5 * time.Second

	// DefaultMaxRetries is the number of retries after the initial
	// attempt before the failure becomes fatal.
	DefaultMaxRetries = 5
)

// Limiter enforces minimum inter-call spacing per call class and wraps
// generative calls in an exponential backoff retry policy. It has no
// knowledge of what the wrapped operation does.
//
// The backoff value persists across calls: consecutive rate-limited
// calls keep doubling it (up to the ceiling), and any success resets it
// to the floor.
//
// Design decision: The clock and sleep functions are injectable because:
//  1. The backoff sequence is part of the component's contract
//  2. Tests must observe exact sleep durations without waiting
//  3. It keeps the Limiter free of real time dependencies
type Limiter struct {
	// generativeInterval is the minimum spacing for ClassGenerative.
	generativeInterval time.Duration

	// searchInterval is the minimum spacing for ClassSearch.
	searchInterval time.Duration

	// backoff is the next rate-limit sleep. Starts at backoffFloor.
	backoff time.Duration

	// backoffFloor is the initial and post-success backoff value.
	backoffFloor time.Duration

	// backoffCeiling caps the doubled backoff.
	backoffCeiling time.Duration

	// retryDelay is the fixed sleep for non-rate-limit failures.
	retryDelay time.Duration

	// maxRetries is the retry budget after the initial attempt.
	maxRetries int

	// lastCall records the time of the last call per class.
	lastCall map[CallClass]time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)

	logger *slog.Logger
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithGenerativeInterval sets the minimum spacing between generative calls.
func WithGenerativeInterval(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.generativeInterval = d
	}
}

// WithSearchInterval sets the minimum spacing between search calls.
func WithSearchInterval(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.searchInterval = d
	}
}

// WithBackoff sets the backoff floor and ceiling.
func WithBackoff(floor, ceiling time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.backoffFloor = floor
		l.backoffCeiling = ceiling
		l.backoff = floor
	}
}

// WithRetryDelay sets the fixed delay for non-rate-limit retries.
func WithRetryDelay(d time.Duration) LimiterOption {
	return func(l *Limiter) {
		l.retryDelay = d
	}
}

// WithMaxRetries sets the retry budget after the initial attempt.
func WithMaxRetries(n int) LimiterOption {
	return func(l *Limiter) {
		l.maxRetries = n
	}
}

// WithLimiterClock injects the time source.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithLimiterSleep injects the sleep function.
func WithLimiterSleep(sleep func(time.Duration)) LimiterOption {
	return func(l *Limiter) {
		l.sleep = sleep
	}
}

// WithLimiterLogger sets a custom logger.
func WithLimiterLogger(logger *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// NewLimiter creates a Limiter with the default pacing and retry policy.
func NewLimiter(opts ...LimiterOption) *Limiter {
	l := &Limiter{
		generativeInterval: DefaultGenerativeInterval,
		searchInterval:     DefaultSearchInterval,
		backoff:            DefaultBackoffFloor,
		backoffFloor:       DefaultBackoffFloor,
		backoffCeiling:     DefaultBackoffCeiling,
		retryDelay:         DefaultRetryDelay,
		maxRetries:         DefaultMaxRetries,
		lastCall:           make(map[CallClass]time.Time),
		now:                time.Now,
		sleep:              time.Sleep,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	return l
}

// Call runs op with the class's pacing applied.
//
// Search-class calls get spacing only: the first failure is returned to
// the caller unchanged (the search service converts it to an empty
// result list).
//
// Generative-class calls get spacing plus the retry policy: rate-limit
// errors sleep the current backoff and double it (capped at the
// ceiling); other errors sleep the fixed retry delay. When the retry
// budget is exhausted the failure is wrapped in ExternalServiceError,
// which aborts the crawl. Any success resets backoff to the floor.
func (l *Limiter) Call(ctx context.Context, class CallClass, op func() error) error {
	if class == ClassSearch {
		l.pace(class)
		return op()
	}

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.pace(class)
		err := op()
		if err == nil {
			l.backoff = l.backoffFloor
			return nil
		}
		lastErr = err

		if isRateLimitError(err) {
			l.logger.Warn("rate limit hit, backing off",
				"class", class.String(),
				"backoff", l.backoff,
				"attempt", attempt+1,
			)
			l.sleep(l.backoff)
			l.backoff = min(l.backoff*2, l.backoffCeiling)
		} else {
			l.logger.Warn("external call failed, retrying",
				"class", class.String(),
				"error", err,
				"attempt", attempt+1,
			)
			l.sleep(l.retryDelay)
		}
	}

	return &ExternalServiceError{
		Class:    class,
		Attempts: l.maxRetries + 1,
		Err:      lastErr,
	}
}

// pace sleeps until the class's minimum interval since its last call
// has elapsed, then records the call time.
func (l *Limiter) pace(class CallClass) {
	interval := l.generativeInterval
	if class == ClassSearch {
		interval = l.searchInterval
	}

	if last, ok := l.lastCall[class]; ok {
		if elapsed := l.now().Sub(last); elapsed < interval {
			l.sleep(interval - elapsed)
		}
	}
	l.lastCall[class] = l.now()
}

// isRateLimitError classifies an error as rate limiting or quota
// exhaustion. The wrapped sentinel is authoritative; the string checks
// catch providers whose errors arrive unclassified.
func isRateLimitError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}
