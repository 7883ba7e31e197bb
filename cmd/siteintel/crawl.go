package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteintel/siteintel/internal/batch"
	"github.com/siteintel/siteintel/internal/config"
	"github.com/siteintel/siteintel/internal/crawler"
	"github.com/siteintel/siteintel/internal/database"
	"github.com/siteintel/siteintel/internal/log"
	"github.com/siteintel/siteintel/internal/model"
	"github.com/siteintel/siteintel/internal/profile"
	"github.com/siteintel/siteintel/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]...",
		Short: "Crawl a business website and classify its pages",
		Long: `Crawl fetches up to a fixed budget of pages from a website,
starting at the given URL and following the most promising links first.

Each page is classified (home, about, products, contact,
certifications, export) and the result is written as a report in
text, JSON, or Markdown format. Results are also stored in a local
history database for later comparison.

Examples:
  # Crawl a site with the default budget (10 pages, depth 3)
  siteintel crawl example.com

  # Crawl more pages, deeper
  siteintel crawl --max-pages 25 --depth 4 example.com

  # Crawl several sites concurrently
  siteintel crawl site-a.com site-b.com site-c.com

  # Crawl every site listed in a file (one URL per line)
  siteintel crawl --batch targets.txt

  # Output JSON to a file
  siteintel crawl --json -o report.json example.com

  # Use a custom configuration file
  siteintel crawl -c myconfig.yaml example.com

Configuration file (.siteintel) example:
  defaults:
    delay: "2s"
  sites:
    example.com:
      maxPages: 25
      keywords:
        products: ["machinery", "equipment"]`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", model.DefaultMaxPages,
		"Maximum number of pages to fetch per site")
	cmd.Flags().IntP("depth", "d", model.DefaultMaxDepth,
		"Maximum link distance from the start URL")
	cmd.Flags().DurationP("timeout", "t", model.DefaultRequestTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("delay", model.DefaultInterRequestDelay,
		"Politeness delay between requests to the same host")
	cmd.Flags().String("user-agent", model.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("accept-language", model.DefaultAcceptLanguage,
		"Accept-Language header sent with every request")
	cmd.Flags().Bool("external", false,
		"Follow links to other hosts")
	cmd.Flags().Bool("ignore-robots", false,
		"Ignore robots.txt disallow rules")

	// Batch crawling flags
	cmd.Flags().StringP("batch", "b", "",
		"File with one target URL per line (lines starting with # are ignored)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of sites crawled in parallel")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .siteintel in current, XDG config, or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-store", false,
		"Do not save the crawl result to the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewConsoleLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// SIGINT/SIGTERM cancel the crawl; the partial result is still
	// reported and stored.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the
// optional config file. Flags override file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.AcceptLanguage, err = cmd.Flags().GetString("accept-language")
	if err != nil {
		return nil, err
	}

	external, err := cmd.Flags().GetBool("external")
	if err != nil {
		return nil, err
	}
	cfg.FollowExternalLinks = external

	ignoreRobots, err := cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}
	cfg.RespectRobots = !ignoreRobots

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.BatchFile, err = cmd.Flags().GetString("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly named a config file, its absence is an
	// error; an absent default config is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoStore, err = cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	// Positional arguments plus the batch file form the target list.
	cfg.Targets = args
	if cfg.BatchFile != "" {
		batchTargets, err := readBatchFile(cfg.BatchFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, batchTargets...)
	}

	return cfg, nil
}

// readBatchFile reads one target URL per line. Blank lines and lines
// starting with # are skipped.
func readBatchFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the CLI user
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return targets, nil
}

// runCrawl executes the crawl for all configured targets.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", len(cfg.Targets),
		"max_pages", cfg.MaxPages,
		"depth", cfg.CrawlDepth,
		"store", !cfg.NoStore,
	)

	var db *database.CrawlDB
	if !cfg.NoStore {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "dir", cfg.DBDir)
	}

	c := crawler.New(crawler.WithLogger(logger))

	requests := make([]model.CrawlRequest, len(cfg.Targets))
	for i, target := range cfg.Targets {
		req, err := buildRequest(cfg, target)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", target, err)
		}
		requests[i] = req
	}

	if len(requests) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cfg, c, db, requests, logger)
	}
	return runSequentialCrawl(ctx, cfg, c, db, requests, logger)
}

// buildRequest turns one target into a crawl request, layering global
// flags and then any matching site block from the config file.
func buildRequest(cfg *config.Config, target string) (model.CrawlRequest, error) {
	req := model.NewCrawlRequest(target)
	req.MaxPages = cfg.MaxPages
	req.MaxDepth = cfg.CrawlDepth
	req.RequestTimeout = cfg.Timeout
	req.InterRequestDelay = cfg.CrawlDelay
	req.UserAgent = cfg.UserAgent
	req.AcceptLanguage = cfg.AcceptLanguage
	req.MaxBodySize = cfg.MaxBodySize
	req.RespectRobots = cfg.RespectRobots
	req.FollowExternalLinks = cfg.FollowExternalLinks

	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.CrawlRequest{}, err
	}

	if cfg.SiteConfigs == nil {
		return req, nil
	}

	host, err := targetHost(req.StartURL)
	if err != nil {
		return model.CrawlRequest{}, err
	}
	applySiteConfig(&req, cfg.SiteConfigs.GetSiteConfig(host))

	return req, nil
}

// targetHost returns the lowercased hostname of a normalized start URL,
// without a leading www, for site-config lookup.
func targetHost(startURL string) (string, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."), nil
}

// applySiteConfig layers a site config block over a crawl request.
func applySiteConfig(req *model.CrawlRequest, sc config.SiteConfig) {
	if sc.UserAgent != "" {
		req.UserAgent = sc.UserAgent
	}
	if sc.Depth > 0 {
		req.MaxDepth = sc.Depth
	}
	if sc.MaxPages > 0 {
		req.MaxPages = sc.MaxPages
	}
	if d, ok, err := sc.DelayDuration(); err == nil && ok {
		req.InterRequestDelay = d
	}
	if sc.RespectRobots != nil {
		req.RespectRobots = *sc.RespectRobots
	}
	if sc.FollowExternal != nil {
		req.FollowExternalLinks = *sc.FollowExternal
	}
	if sc.Cookie != "" || len(sc.Headers) > 0 {
		if req.Headers == nil {
			req.Headers = make(map[string]string, len(sc.Headers)+1)
		}
		for k, v := range sc.Headers {
			req.Headers[k] = v
		}
		if sc.Cookie != "" {
			req.Headers["Cookie"] = sc.Cookie
		}
	}
	if len(sc.Keywords) > 0 {
		if req.ExtraKeywords == nil {
			req.ExtraKeywords = make(map[model.PageType][]string, len(sc.Keywords))
		}
		for name, words := range sc.Keywords {
			t := model.ParsePageType(name)
			if t == model.PageTypeUnknown {
				continue
			}
			req.ExtraKeywords[t] = append(req.ExtraKeywords[t], words...)
		}
	}
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, c *crawler.Crawler, db *database.CrawlDB, requests []model.CrawlRequest, logger *slog.Logger) error {
	for _, req := range requests {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Crawling %s...\n", req.StartURL)
		startTime := time.Now()

		result, err := c.Crawl(ctx, req)
		if err != nil {
			logger.Error("crawl failed", "target", req.StartURL, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", req.StartURL, err)
			continue
		}

		fmt.Printf("Crawled %d pages in %s\n\n", result.PageCount(), time.Since(startTime).Round(time.Millisecond))

		result.Profile = profile.Build(result)

		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "target", req.StartURL, "error", err)
		}

		if err := saveCrawl(ctx, db, result, logger); err != nil {
			logger.Error("failed to save crawl", "target", req.StartURL, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls targets concurrently, streaming reports as
// crawls complete.
func runBatchCrawl(ctx context.Context, cfg *config.Config, c *crawler.Crawler, db *database.CrawlDB, requests []model.CrawlRequest, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(requests), cfg.Concurrency)

	startTime := time.Now()

	p := batch.New(c,
		batch.WithConcurrency(cfg.Concurrency),
		batch.WithLogger(logger),
	)

	// Reports interleave without the lock; saving is already serialized
	// by the database connection.
	var mu sync.Mutex
	err := p.RunWithCallback(ctx, requests, func(outcome batch.Outcome, index int) {
		mu.Lock()
		defer mu.Unlock()

		if outcome.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Crawl error for %s: %v\n",
				index+1, len(requests), outcome.Request.StartURL, outcome.Err)
			return
		}

		fmt.Printf("[%d/%d] Crawled %s (%d pages)\n",
			index+1, len(requests), outcome.Request.StartURL, outcome.Result.PageCount())

		outcome.Result.Profile = profile.Build(outcome.Result)

		if err := outputReport(cfg, outcome.Result); err != nil {
			logger.Error("report failed", "target", outcome.Request.StartURL, "error", err)
		}
		if err := saveCrawl(ctx, db, outcome.Result, logger); err != nil {
			logger.Error("failed to save crawl", "target", outcome.Request.StartURL, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: reports may carry cookies-gated content and contact data.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewTextWriter(output)
	}

	_, err := w.Write(result)
	return err
}

// saveCrawl stores the crawl result in the history database.
// If db is nil, this function is a no-op.
func saveCrawl(ctx context.Context, db *database.CrawlDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveCrawl(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved to history", "id", id, "site", database.SiteKey(result))
	return nil
}
