package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. Package-level
// sentinels let callers use errors.Is() for programmatic handling while
// still carrying human-readable messages.
var (
	// ErrNoTarget is returned when no target URL or batch file is specified.
	// This error occurs when neither --batch nor a positional argument
	// provides a target.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --batch")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A page budget of zero would mean fetching nothing.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidCrawlDepth is returned when the crawl depth is not positive.
	// The start page is depth 0, so a positive depth is needed to follow links.
	ErrInvalidCrawlDepth = errors.New("invalid crawl depth: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// A concurrency of zero would mean no crawling at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidAcceptLanguage is returned when the Accept-Language value
	// does not parse as a language priority list.
	ErrInvalidAcceptLanguage = errors.New("invalid accept-language: must be a language priority list such as \"en-US,en;q=0.9\"")
)
