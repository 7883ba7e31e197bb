package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CrawlRequest errors.
var (
	// ErrEmptyStartURL is returned when the start URL is empty.
	ErrEmptyStartURL = errors.New("start URL cannot be empty")
	// ErrInvalidStartURL is returned when the start URL cannot be parsed.
	ErrInvalidStartURL = errors.New("invalid start URL")
	// ErrUnsupportedScheme is returned for schemes other than http and https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// Crawl defaults applied by NewCrawlRequest and Normalize.
const (
	// DefaultMaxPages is the default page budget for a crawl.
	DefaultMaxPages = 10
	// DefaultMaxDepth is the default maximum link distance from the start URL.
	DefaultMaxDepth = 3
	// DefaultRequestTimeout is the default per-request HTTP timeout.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultInterRequestDelay is the default politeness delay between
	// consecutive requests to the same host.
	DefaultInterRequestDelay = 1500 * time.Millisecond
	// DefaultUserAgent is the User-Agent header sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; siteintel/1.0; +https://github.com/siteintel/siteintel)"
	// DefaultAcceptLanguage is the Accept-Language header sent with every request.
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	// DefaultMaxBodySize is the maximum response body size read per page.
	DefaultMaxBodySize = int64(5 * 1024 * 1024)
)

// CrawlRequest describes a single crawl of one website. Each request
// produces an independent crawl session with its own frontier, visited
// set, and robots.txt cache.
type CrawlRequest struct {
	// StartURL is the entry point of the crawl. A bare domain is
	// accepted; Normalize prepends https:// when the scheme is missing.
	StartURL string `json:"start_url"`

	// MaxPages is the maximum number of pages to fetch.
	MaxPages int `json:"max_pages"`

	// MaxDepth is the maximum link distance from the start URL.
	// The start page is depth 0.
	MaxDepth int `json:"max_depth"`

	// RespectRobots controls whether robots.txt disallow rules are honored.
	RespectRobots bool `json:"respect_robots"`

	// FollowExternalLinks controls whether links to other hosts are
	// kept as candidates and queued. When false, cross-host links are
	// discarded at extraction.
	FollowExternalLinks bool `json:"follow_external_links"`

	// RequestTimeout is the per-request HTTP timeout.
	RequestTimeout time.Duration `json:"request_timeout"`

	// InterRequestDelay is the politeness delay between consecutive
	// requests to the same host.
	InterRequestDelay time.Duration `json:"inter_request_delay"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `json:"user_agent,omitempty"`

	// AcceptLanguage overrides the default Accept-Language header.
	AcceptLanguage string `json:"accept_language,omitempty"`

	// MaxBodySize is the maximum response body size in bytes read per
	// page. Larger bodies are truncated, not rejected.
	MaxBodySize int64 `json:"max_body_size,omitempty"`

	// Headers contains additional headers sent with every request,
	// such as cookies or authorization for gated sites.
	Headers map[string]string `json:"headers,omitempty"`

	// ExtraKeywords extends the built-in classification keyword tables.
	// Keys are page types; values are additional keywords matched against
	// titles, headings, and body text. Extras never replace the built-ins.
	ExtraKeywords map[PageType][]string `json:"extra_keywords,omitempty"`
}

// NewCrawlRequest creates a CrawlRequest for the given start URL with
// all defaults applied. RespectRobots defaults to true.
func NewCrawlRequest(startURL string) CrawlRequest {
	return CrawlRequest{
		StartURL:          startURL,
		MaxPages:          DefaultMaxPages,
		MaxDepth:          DefaultMaxDepth,
		RespectRobots:     true,
		RequestTimeout:    DefaultRequestTimeout,
		InterRequestDelay: DefaultInterRequestDelay,
		UserAgent:         DefaultUserAgent,
		AcceptLanguage:    DefaultAcceptLanguage,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// Normalize fills zero-valued fields with defaults and completes a bare
// domain into a full URL. Boolean fields are left untouched so callers
// building the struct directly keep what they set.
func (r *CrawlRequest) Normalize() {
	r.StartURL = strings.TrimSpace(r.StartURL)
	if r.StartURL != "" && !strings.Contains(r.StartURL, "://") {
		r.StartURL = "https://" + r.StartURL
	}
	if r.MaxPages <= 0 {
		r.MaxPages = DefaultMaxPages
	}
	if r.MaxDepth <= 0 {
		r.MaxDepth = DefaultMaxDepth
	}
	if r.RequestTimeout <= 0 {
		r.RequestTimeout = DefaultRequestTimeout
	}
	if r.InterRequestDelay < 0 {
		r.InterRequestDelay = DefaultInterRequestDelay
	}
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
	if r.AcceptLanguage == "" {
		r.AcceptLanguage = DefaultAcceptLanguage
	}
	if r.MaxBodySize <= 0 {
		r.MaxBodySize = DefaultMaxBodySize
	}
}

// Validate checks that the request identifies a crawlable start URL.
// It performs no network access. Call Normalize first so bare domains
// are completed before parsing.
func (r *CrawlRequest) Validate() error {
	if r.StartURL == "" {
		return ErrEmptyStartURL
	}
	u, err := url.Parse(r.StartURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidStartURL, r.StartURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidStartURL, r.StartURL)
	}
	return nil
}

// BaseHost returns the lowercased hostname of the start URL without any
// port. Returns empty string if the start URL does not parse.
func (r *CrawlRequest) BaseHost() string {
	u, err := url.Parse(r.StartURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
