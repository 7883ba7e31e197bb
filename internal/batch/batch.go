package batch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/siteintel/siteintel/internal/crawler"
	"github.com/siteintel/siteintel/internal/model"
)

// DefaultConcurrency is the number of sites crawled in parallel when
// no limit is configured.
const DefaultConcurrency = 4

// Outcome is the result of one crawl in a batch. Err is set when the
// request itself was unusable; a reachable site that yielded no pages
// still produces a Result with an empty page list.
type Outcome struct {
	// Request is the crawl request this outcome belongs to.
	Request model.CrawlRequest

	// Result is the crawl result. Nil when Err is set.
	Result *model.CrawlResult

	// Err is the request-level error, if any.
	Err error
}

// Processor crawls multiple start URLs concurrently with a bounded
// number of crawls in flight. One Crawler instance is shared across
// the batch; every crawl still runs in its own session.
type Processor struct {
	// crawler executes the individual crawls.
	crawler *crawler.Crawler

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithConcurrency sets the maximum number of concurrent crawls.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for batch processing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a Processor that runs crawls on the given Crawler.
func New(c *crawler.Crawler, opts ...Option) *Processor {
	p := &Processor{
		crawler:     c,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Run crawls all requests and returns one outcome per request, in
// request order. Individual crawl failures are recorded in their
// outcome and never abort the rest of the batch; the returned error is
// non-nil only when the batch was cancelled.
func (p *Processor) Run(ctx context.Context, requests []model.CrawlRequest) ([]Outcome, error) {
	p.logger.Info("starting batch crawl",
		"total_sites", len(requests),
		"concurrency", p.concurrency,
	)

	startTime := time.Now()

	// Outcomes are indexed by request position; each goroutine writes
	// only its own slot, so no locking is needed.
	outcomes := make([]Outcome, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			p.logger.Info("crawling site",
				"start_url", req.StartURL,
				"index", i+1,
				"total", len(requests),
			)

			result, err := p.crawler.Crawl(ctx, req)
			outcomes[i] = Outcome{Request: req, Result: result, Err: err}

			if err != nil {
				p.logger.Warn("crawl failed",
					"start_url", req.StartURL,
					"error", err,
				)
				// Recorded in the outcome; other crawls continue.
				return nil
			}

			p.logger.Info("crawl completed",
				"start_url", req.StartURL,
				"pages", result.PageCount(),
			)

			return nil
		})
	}

	err := g.Wait()

	p.logger.Info("batch crawl complete",
		"total_sites", len(requests),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return outcomes, err
}

// RunWithCallback crawls all requests and calls the callback for each
// completed crawl. This is useful for streaming results as they arrive.
//
// The callback receives the outcome and the index of the request in the
// original slice. It is called from the goroutine that completed the
// crawl, so it must be safe for concurrent use if it touches shared
// state.
func (p *Processor) RunWithCallback(
	ctx context.Context,
	requests []model.CrawlRequest,
	callback func(outcome Outcome, index int),
) error {
	p.logger.Info("starting batch crawl with callback",
		"total_sites", len(requests),
		"concurrency", p.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, err := p.crawler.Crawl(ctx, req)
			callback(Outcome{Request: req, Result: result, Err: err}, i)

			return nil
		})
	}

	return g.Wait()
}
