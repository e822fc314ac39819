// Package constants provides shared constants used throughout the questlog codebase.
// This includes timeouts, retry limits, matcher thresholds, and other configuration
// defaults that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to catalog APIs
	DefaultHTTPTimeout = 30 * time.Second

	// TokenTimeout is the timeout for OAuth token requests
	TokenTimeout = 10 * time.Second

	// PassTimeout is the default timeout for one full reconciliation pass
	PassTimeout = 30 * time.Minute

	// RecordTimeout is the timeout for processing a single record
	RecordTimeout = 2 * time.Minute
)

// Retry constants bound worst-case latency of transient-failure handling
const (
	// MaxRetries is the maximum number of attempts for a retryable operation
	MaxRetries = 5

	// RetryBackoff is the base backoff duration between retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff caps the exponential backoff duration
	MaxRetryBackoff = 30 * time.Second
)

// Concurrency and rate-limit constants
const (
	// DefaultWorkers is the default number of records processed concurrently
	DefaultWorkers = 4

	// DefaultRateLimit is the default requests per minute per catalog
	DefaultRateLimit = 60

	// BurstSize is the token bucket burst size for catalog rate limiting
	BurstSize = 4
)

// Matcher defaults. Exact values are a tuning choice; they are exposed
// through configuration and these are only the fallbacks.
const (
	// MatchFloor is the minimum similarity score for a candidate to survive
	MatchFloor = 0.70

	// MatchMargin is the minimum lead the best candidate needs over the
	// runner-up before it is selected automatically
	MatchMargin = 0.05

	// HintBoost is the score boost applied when a platform or release-year
	// hint agrees with a candidate
	HintBoost = 0.05

	// MaxAmbiguous bounds the candidate set reported for manual resolution
	MaxAmbiguous = 5
)

// Paging constants
const (
	// NotionPageSize is the page size used when querying the Notion database
	NotionPageSize = 100

	// SearchLimit is the maximum number of candidates requested per catalog search
	SearchLimit = 25
)
