package model

import (
	"time"
)

// CrawlResult is the main crawl output structure. It contains every page
// fetched during one crawl session, in the order the pages were fetched.
type CrawlResult struct {
	// StartURL is the normalized URL the crawl began from.
	StartURL string `json:"start_url"`

	// BaseURL is the scheme and host that define the crawl scope.
	// If scheme fallback occurred on the first fetch, BaseURL reflects
	// the scheme that actually worked.
	BaseURL string `json:"base_url"`

	// Pages contains one record per successfully fetched page, in fetch
	// order. The first element is always the start page when it was
	// reachable.
	Pages []PageRecord `json:"pages"`

	// VisitedURLs lists every normalized URL that was dequeued during
	// the crawl, including URLs whose fetch failed. Sorted for stable
	// output.
	VisitedURLs []string `json:"visited_urls,omitempty"`

	// CrawledAt is when the crawl started.
	CrawledAt time.Time `json:"crawled_at"`

	// Duration is the total wall-clock time of the crawl.
	Duration time.Duration `json:"duration"`

	// Truncated is true if the crawl stopped because it reached the
	// page budget while candidates were still queued.
	Truncated bool `json:"truncated"`

	// Profile contains derived site intelligence. Populated by the
	// profile builder; nil when profiling was not requested.
	Profile *SiteProfile `json:"profile,omitempty"`
}

// NewCrawlResult creates a CrawlResult for the given start URL.
func NewCrawlResult(startURL, baseURL string) *CrawlResult {
	return &CrawlResult{
		StartURL:  startURL,
		BaseURL:   baseURL,
		Pages:     make([]PageRecord, 0),
		CrawledAt: time.Now(),
	}
}

// AddPage appends a fetched page record, preserving fetch order.
func (r *CrawlResult) AddPage(page PageRecord) {
	r.Pages = append(r.Pages, page)
}

// PageCount returns the number of pages fetched.
func (r *CrawlResult) PageCount() int {
	return len(r.Pages)
}

// CountByType returns the number of pages per page type.
func (r *CrawlResult) CountByType() map[PageType]int {
	counts := make(map[PageType]int, len(r.Pages))
	for i := range r.Pages {
		counts[r.Pages[i].PageType]++
	}
	return counts
}

// PagesByType returns the pages classified as the given type, in fetch order.
func (r *CrawlResult) PagesByType(t PageType) []PageRecord {
	var pages []PageRecord
	for i := range r.Pages {
		if r.Pages[i].PageType == t {
			pages = append(pages, r.Pages[i])
		}
	}
	return pages
}

// HasPageType returns true if at least one page has the given type.
func (r *CrawlResult) HasPageType(t PageType) bool {
	for i := range r.Pages {
		if r.Pages[i].PageType == t {
			return true
		}
	}
	return false
}

// FirstPageOfType returns the first fetched page of the given type,
// or nil if no page has that type.
func (r *CrawlResult) FirstPageOfType(t PageType) *PageRecord {
	for i := range r.Pages {
		if r.Pages[i].PageType == t {
			return &r.Pages[i]
		}
	}
	return nil
}

// TotalWords returns the total visible word count across all pages.
func (r *CrawlResult) TotalWords() int {
	total := 0
	for i := range r.Pages {
		total += r.Pages[i].WordCount
	}
	return total
}
