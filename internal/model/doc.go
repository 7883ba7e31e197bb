// Package model defines the core data structures used throughout siteintel.
//
// This package contains the following main types:
//   - CrawlRequest: Parameters for a single site crawl
//   - PageRecord: A crawled page with extracted content and classification
//   - CrawlResult: The main crawl output structure
//   - SiteProfile: A summarized, human-readable view of a crawled site
//
// Models live in their own package because multiple packages (crawler,
// profile, report, database) share these types, and centralizing them
// prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
