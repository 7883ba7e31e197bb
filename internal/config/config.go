package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/siteintel/siteintel/internal/model"
)

// Default configuration values. Crawl-level defaults live in the model
// package so the library and the CLI stay in sync; this package only adds
// CLI-level defaults on top.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "siteintel"

	// DefaultConcurrency is the number of sites crawled in parallel when
	// multiple targets are given. Each site still gets its own politeness
	// delay, so this only bounds cross-site parallelism.
	DefaultConcurrency = 4

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for siteintel.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// Targets is the list of website URLs or bare domains to crawl.
	// Must contain at least one entry after merging positional arguments
	// and the batch file.
	Targets []string

	// MaxPages is the maximum number of pages to fetch per site.
	MaxPages int

	// CrawlDepth is the maximum link distance from the start URL.
	// The start page is depth 0.
	CrawlDepth int

	// Timeout is the HTTP timeout for each request.
	Timeout time.Duration

	// CrawlDelay is the politeness delay between consecutive requests
	// to the same host. Lower values may trigger rate limiting.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// AcceptLanguage is the Accept-Language header sent with HTTP requests.
	// Must be a valid language priority list (RFC 9110 section 12.5.4).
	AcceptLanguage string

	// RespectRobots controls whether robots.txt disallow rules are honored.
	RespectRobots bool

	// FollowExternalLinks controls whether links to other hosts are crawled.
	FollowExternalLinks bool

	// Concurrency is the number of sites crawled in parallel when multiple
	// targets are given.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// BatchFile is a path to a file with one target URL per line.
	// Lines starting with # are ignored.
	BatchFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .siteintel in the current directory,
	// the XDG config directory, and the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. Populated by LoadConfigFile and used per target.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite database.
	// Crawl results are saved there for historical comparison.
	// Defaults to the XDG data directory.
	DBDir string

	// NoStore disables saving crawl results to the database.
	NoStore bool

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		MaxPages:       model.DefaultMaxPages,
		CrawlDepth:     model.DefaultMaxDepth,
		Timeout:        model.DefaultRequestTimeout,
		CrawlDelay:     model.DefaultInterRequestDelay,
		UserAgent:      model.DefaultUserAgent,
		AcceptLanguage: model.DefaultAcceptLanguage,
		RespectRobots:  true,
		Concurrency:    DefaultConcurrency,
		DBDir:          XDGDataDir(),
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for siteintel.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/siteintel
// On macOS: ~/Library/Application Support/siteintel
// On Windows: %LOCALAPPDATA%\siteintel
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for siteintel.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/siteintel
// On macOS: ~/Library/Application Support/siteintel
// On Windows: %APPDATA%\siteintel
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for siteintel.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/siteintel
// On macOS: ~/Library/Caches/siteintel
// On Windows: %LOCALAPPDATA%\siteintel\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes others
// irrelevant. This is called once after CLI parsing, before any crawling
// begins.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.CrawlDepth <= 0 {
		return ErrInvalidCrawlDepth
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.AcceptLanguage != "" {
		if _, _, err := language.ParseAcceptLanguage(c.AcceptLanguage); err != nil {
			return ErrInvalidAcceptLanguage
		}
	}

	return nil
}
