// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - One row per completed crawl, with the full result as JSON
//   - One row per crawled page, for cheap history and diff queries
//
// SQLite (via modernc.org/sqlite) keeps the history in a single file
// with no CGO and no external server, and WAL mode gives good
// concurrent read performance for history queries while a crawl is
// being saved.
package database
