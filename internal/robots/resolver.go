package robots

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"

	"github.com/siteintel/siteintel/internal/fetcher"
)

// cacheTTL bounds how long parsed robots rules are reused. A single
// crawl session is far shorter, so each host is resolved once per crawl.
const cacheTTL = 30 * time.Minute

// Policy is the effective robots policy for one host and one user
// agent. The zero value allows every path.
type Policy struct {
	// group holds the matched rule group; nil allows everything.
	group *robotstxt.Group
}

// Allowed reports whether the URL's path may be fetched under this
// policy. Unparseable URLs are allowed; the fetch will fail on its own.
func (p *Policy) Allowed(rawURL string) bool {
	if p == nil || p.group == nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return p.group.Test(path)
}

// Resolver resolves per-host robots policies through the crawl fetcher.
// Failure to retrieve or parse robots.txt yields the permissive policy:
// a broken robots.txt never halts a crawl.
type Resolver struct {
	// fetcher retrieves robots.txt, with the same scheme fallback and
	// timeout behavior as page fetches.
	fetcher fetcher.Fetcher

	// userAgent selects the rule group, matching robots exclusion
	// semantics (case-insensitive, longest token prefix, * fallback).
	userAgent string

	// policies caches resolved policies keyed by lowercased host.
	policies *cache.Cache

	// logger records resolution failures.
	logger *slog.Logger
}

// NewResolver creates a resolver that fetches robots.txt via f and
// evaluates rules for userAgent.
func NewResolver(f fetcher.Fetcher, userAgent string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		fetcher:   f,
		userAgent: userAgent,
		policies:  cache.New(cacheTTL, cacheTTL),
		logger:    logger,
	}
}

// Resolve returns the robots policy for the host of baseURL. The result
// is cached per host; any retrieval or parse failure degrades to the
// permissive policy.
func (r *Resolver) Resolve(ctx context.Context, baseURL string) *Policy {
	target, err := url.Parse(baseURL)
	if err != nil || target.Host == "" {
		return &Policy{}
	}

	host := strings.ToLower(target.Host)
	if cached, found := r.policies.Get(host); found {
		if policy, ok := cached.(*Policy); ok {
			return policy
		}
	}

	policy := r.resolveHost(ctx, target)
	r.policies.Set(host, policy, cache.DefaultExpiration)
	return policy
}

// Allowed reports whether rawURL may be fetched, resolving the host
// policy on first use.
func (r *Resolver) Allowed(ctx context.Context, rawURL string) bool {
	return r.Resolve(ctx, rawURL).Allowed(rawURL)
}

// resolveHost fetches and parses {scheme}://{host}/robots.txt.
func (r *Resolver) resolveHost(ctx context.Context, target *url.URL) *Policy {
	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"

	resp, err := r.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		r.logger.Warn("robots.txt unavailable, allowing all paths",
			"url", robotsURL,
			"error", err)
		return &Policy{}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Missing robots.txt is the common case, not a fault.
		r.logger.Debug("robots.txt not served, allowing all paths",
			"url", robotsURL,
			"status", resp.StatusCode)
		return &Policy{}
	}

	data, err := robotstxt.FromBytes(resp.Body)
	if err != nil {
		r.logger.Warn("robots.txt unparsable, allowing all paths",
			"url", robotsURL,
			"error", err)
		return &Policy{}
	}

	return &Policy{group: data.FindGroup(r.userAgent)}
}
