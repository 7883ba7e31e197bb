package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/siteintel/siteintel/internal/fetcher"
	"github.com/siteintel/siteintel/internal/model"
	"github.com/siteintel/siteintel/internal/robots"
)

// Crawler turns a start URL into a CrawlResult. A zero-argument New
// yields a working crawler; options replace pieces for testing or for
// sharing a fetcher across crawls. One Crawler may serve many requests,
// and every request runs in its own session with a fresh frontier,
// visited set, robots cache, and rate limiters.
type Crawler struct {
	fetcher    fetcher.Fetcher
	classifier *Classifier
	logger     *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithFetcher sets the fetcher used for every request, including
// robots.txt. When unset, each crawl builds an HTTP fetcher from the
// request's timeout, user agent, and headers.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Crawler) {
		c.fetcher = f
	}
}

// WithClassifier sets the page classifier. A request carrying extra
// keywords still gets its own classifier extended with them.
func WithClassifier(cl *Classifier) Option {
	return func(c *Crawler) {
		c.classifier = cl
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// crawlSession is the per-request state. Nothing here outlives the
// Crawl call that created it.
type crawlSession struct {
	req        model.CrawlRequest
	fetcher    fetcher.Fetcher
	robots     *robots.Resolver
	classifier *Classifier
	extractor  *LinkExtractor
	frontier   *frontier
	limiters   map[string]*rate.Limiter
}

func (c *Crawler) newSession(req model.CrawlRequest) *crawlSession {
	f := c.fetcher
	if f == nil {
		f = fetcher.NewHTTPFetcher(
			fetcher.WithTimeout(req.RequestTimeout),
			fetcher.WithUserAgent(req.UserAgent),
			fetcher.WithAcceptLanguage(req.AcceptLanguage),
			fetcher.WithHeaders(req.Headers),
			fetcher.WithMaxBodySize(req.MaxBodySize),
			fetcher.WithLogger(c.logger),
		)
	}

	classifier := c.classifier
	if classifier == nil || len(req.ExtraKeywords) > 0 {
		classifier = NewClassifier(req.ExtraKeywords)
	}

	return &crawlSession{
		req:        req,
		fetcher:    f,
		robots:     robots.NewResolver(f, req.UserAgent, c.logger),
		classifier: classifier,
		extractor:  NewLinkExtractor(classifier),
		frontier:   newFrontier(),
		limiters:   make(map[string]*rate.Limiter),
	}
}

// wait enforces the politeness delay for the URL's host. The first
// request to each host goes through immediately; later ones wait out
// the remainder of the inter-request delay or the context.
func (s *crawlSession) wait(ctx context.Context, rawURL string) error {
	if s.req.InterRequestDelay <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.req.InterRequestDelay), 1)
		s.limiters[host] = limiter
	}
	return limiter.Wait(ctx)
}

// Crawl fetches up to req.MaxPages pages starting from req.StartURL,
// following links in priority order up to req.MaxDepth. It returns an
// error only when the request itself is unusable; a crawl that fetches
// nothing still returns an empty result. Canceling the context stops
// the crawl and returns the pages collected so far.
func (c *Crawler) Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Validate guarantees the start URL parses with scheme and host.
	start, _ := url.Parse(req.StartURL)
	baseURL := start.Scheme + "://" + start.Host

	logger := c.logger.With("start_url", req.StartURL)
	logger.Info("crawl started",
		"max_pages", req.MaxPages,
		"max_depth", req.MaxDepth,
		"respect_robots", req.RespectRobots,
	)

	session := c.newSession(req)
	session.frontier.push(req.StartURL, 0, 0)

	result := model.NewCrawlResult(req.StartURL, baseURL)

	for result.PageCount() < req.MaxPages {
		if ctx.Err() != nil {
			logger.Info("crawl interrupted", "pages", result.PageCount())
			break
		}

		entry, ok := session.frontier.pop()
		if !ok {
			break
		}
		if entry.depth > req.MaxDepth {
			continue
		}

		if req.RespectRobots && !session.robots.Allowed(ctx, entry.url) {
			logger.Debug("blocked by robots.txt", "url", entry.url)
			continue
		}

		if err := session.wait(ctx, entry.url); err != nil {
			logger.Info("crawl interrupted", "pages", result.PageCount())
			break
		}

		resp, err := session.fetcher.Fetch(ctx, entry.url)
		if err != nil {
			logger.Warn("fetch failed", "url", entry.url, "error", err)
			continue
		}
		session.frontier.markVisited(resp.FinalURL)

		if !resp.IsHTML() {
			logger.Debug("skipping non-HTML response",
				"url", entry.url,
				"content_type", resp.ContentType,
			)
			continue
		}

		doc, err := ParseDocument(resp.Body)
		if err != nil {
			logger.Warn("parse failed", "url", entry.url, "error", err)
			continue
		}

		// Scheme fallback or a redirect on the first page moves the whole
		// crawl scope to the variant that answered.
		if result.PageCount() == 0 {
			if u, err := url.Parse(resp.FinalURL); err == nil && u.Host != "" {
				baseURL = u.Scheme + "://" + u.Host
				result.BaseURL = baseURL
			}
		}

		pageType := session.classifier.Classify(resp.FinalURL, doc)

		var links []model.LinkCandidate
		if entry.depth < req.MaxDepth {
			links = session.extractor.Extract(doc, resp.FinalURL, baseURL, req.FollowExternalLinks)
			for _, link := range links {
				session.frontier.push(link.URL, entry.depth+1, link.Priority)
			}
		}

		page := model.PageRecord{
			URL:             resp.FinalURL,
			Title:           doc.Title,
			MetaDescription: doc.MetaDescription,
			HeadingText:     doc.Heading,
			PageType:        pageType,
			WordCount:       doc.WordCount,
			Depth:           entry.depth,
			StatusCode:      resp.StatusCode,
			OutboundLinks:   links,
			Snapshot:        doc.Text,
			CrawledAt:       time.Now(),
		}
		page.TruncateSnapshot()
		result.AddPage(page)

		logger.Debug("page crawled",
			"url", page.URL,
			"page_type", pageType,
			"depth", entry.depth,
			"status", resp.StatusCode,
			"links", len(links),
		)
	}

	result.VisitedURLs = session.frontier.visitedURLs()
	result.Duration = time.Since(result.CrawledAt)
	result.Truncated = result.PageCount() >= req.MaxPages && session.frontier.size() > 0

	logger.Info("crawl complete",
		"pages", result.PageCount(),
		"duration", result.Duration.Round(time.Millisecond),
		"truncated", result.Truncated,
	)

	return result, nil
}
