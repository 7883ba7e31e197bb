package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/siteintel/siteintel/internal/model"
)

// jsonAPI (de)serializes stored crawl payloads. The drop-in jsoniter
// config keeps the wire format identical to encoding/json while
// decoding large stored results faster.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// dbFileName is the SQLite database file name inside the data directory.
const dbFileName = "siteintel.db"

// CrawlDB provides SQLite-based storage for crawl results.
// It manages connection pooling and provides methods for saving crawls
// and querying crawl history.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents the driver from creating a new file when the
	// caller asked for an existing database.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn on concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per completed crawl; the full result is stored as JSON.
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		start_url TEXT NOT NULL,
		base_url TEXT NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		truncated INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		type_summary TEXT,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_site ON crawls(site);
	CREATE INDEX IF NOT EXISTS idx_crawls_created ON crawls(created_at);

	-- One row per crawled page, for history and diff queries that
	-- should not deserialize whole results.
	CREATE TABLE IF NOT EXISTS crawl_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		page_type TEXT NOT NULL,
		depth INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER NOT NULL DEFAULT 0,
		title TEXT,
		word_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(crawl_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl ON crawl_pages(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_pages_type ON crawl_pages(page_type);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SiteKey derives the history key for a crawl result: the lowercased
// host of the crawl scope without a leading www. An empty string means
// the result carries no usable base URL.
func SiteKey(result *model.CrawlResult) string {
	u, err := url.Parse(result.BaseURL)
	if err != nil || u.Hostname() == "" {
		u, err = url.Parse(result.StartURL)
		if err != nil {
			return ""
		}
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// SaveCrawl stores a completed crawl result and its pages.
// Returns the database ID of the stored crawl.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, result *model.CrawlResult) (int64, error) {
	site := SiteKey(result)
	if site == "" {
		return 0, fmt.Errorf("cannot derive site key from %q", result.StartURL)
	}

	resultJSON, err := jsonAPI.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize crawl result: %w", err)
	}

	summary := make(map[string]int, len(result.Pages))
	for pageType, count := range result.CountByType() {
		summary[pageType.String()] = count
	}
	summaryJSON, err := jsonAPI.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize type summary: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (site, start_url, base_url, page_count, duration_ms, truncated, type_summary, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		site,
		result.StartURL,
		result.BaseURL,
		result.PageCount(),
		result.Duration.Milliseconds(),
		boolToInt(result.Truncated),
		string(summaryJSON),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl ID: %w", err)
	}

	pageQuery := `
	INSERT INTO crawl_pages (crawl_id, url, page_type, depth, status_code, title, word_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(crawl_id, url) DO UPDATE SET
		page_type = excluded.page_type,
		depth = excluded.depth,
		status_code = excluded.status_code,
		title = excluded.title,
		word_count = excluded.word_count
	`
	for i := range result.Pages {
		page := &result.Pages[i]
		if _, err := tx.ExecContext(ctx, pageQuery,
			crawlID,
			page.URL,
			page.PageType.String(),
			page.Depth,
			page.StatusCode,
			page.Title,
			page.WordCount,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}

	return crawlID, nil
}

// CrawlByID retrieves a stored crawl result by its database ID.
// Returns nil without an error when no crawl has that ID.
func (cdb *CrawlDB) CrawlByID(ctx context.Context, id int64) (*model.CrawlResult, error) {
	var resultJSON string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT result_json FROM crawls WHERE id = ?`, id,
	).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl: %w", err)
	}

	var result model.CrawlResult
	if err := jsonAPI.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse stored crawl: %w", err)
	}

	return &result, nil
}

// CrawlMetadata contains summary information about a stored crawl.
// This is used for displaying crawl history without loading full results.
type CrawlMetadata struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64

	// Site is the history key (the crawled host).
	Site string

	// StartURL is the URL the crawl began from.
	StartURL string

	// PageCount is the number of pages stored for this crawl.
	PageCount int

	// Truncated is true if the crawl stopped at its page budget.
	Truncated bool

	// CreatedAt is when the crawl was stored.
	CreatedAt time.Time

	// TypeSummary contains page counts by page type name.
	TypeSummary map[string]int
}

// History retrieves crawl metadata for a site, newest first.
func (cdb *CrawlDB) History(ctx context.Context, site string) ([]CrawlMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, site, start_url, page_count, truncated, created_at, type_summary
	FROM crawls
	WHERE site = ?
	ORDER BY created_at DESC, id DESC
	`, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []CrawlMetadata
	for rows.Next() {
		var meta CrawlMetadata
		var truncated int
		var createdAt string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &meta.StartURL, &meta.PageCount,
			&truncated, &createdAt, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Truncated = truncated != 0
		meta.CreatedAt = parseTimestamp(createdAt)
		meta.TypeSummary = make(map[string]int)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := jsonAPI.Unmarshal([]byte(summaryJSON.String), &meta.TypeSummary); err != nil {
				meta.TypeSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListSites returns all sites with stored crawls, sorted by name.
func (cdb *CrawlDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT DISTINCT site FROM crawls ORDER BY site`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// HasRecentCrawl checks whether a site was crawled within the given
// duration. Callers can use this to skip re-crawling fresh sites.
func (cdb *CrawlDB) HasRecentCrawl(ctx context.Context, site string, within time.Duration) (bool, error) {
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM crawls
	WHERE site = ? AND created_at > datetime('now', ?)
	`, site, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// boolToInt converts a bool to the 0/1 form SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. Returns zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
