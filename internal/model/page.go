package model

import (
	"strings"
	"time"
)

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// Larger snapshots are truncated to this size.
const MaxSnapshotSize = 32 * 1024 // 32 KB

// PageRecord represents a single crawled page with its extracted content
// and classification. Records appear in CrawlResult.Pages in fetch order.
type PageRecord struct {
	// URL is the absolute URL that was fetched.
	// If scheme fallback occurred, this is the variant that succeeded.
	URL string `json:"url"`

	// Title is the page title extracted from the <title> tag.
	Title string `json:"title,omitempty"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string `json:"meta_description,omitempty"`

	// HeadingText is the text of the first <h1> element.
	HeadingText string `json:"heading_text,omitempty"`

	// PageType is the classification assigned to this page.
	PageType PageType `json:"page_type"`

	// WordCount is the number of whitespace-separated words in the
	// visible text of the page.
	WordCount int `json:"word_count"`

	// Depth is the link distance from the start URL. The start page is 0.
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// OutboundLinks contains the scored link candidates extracted from
	// this page, sorted by descending priority.
	OutboundLinks []LinkCandidate `json:"outbound_links,omitempty"`

	// Snapshot is a text-only snapshot of the visible page content.
	// Limited to MaxSnapshotSize bytes.
	Snapshot string `json:"snapshot,omitempty"`

	// CrawledAt is when the page was fetched.
	CrawledAt time.Time `json:"crawled_at"`
}

// LinkCandidate represents a link discovered on a page, scored for
// crawl ordering. Higher priority links are visited first.
type LinkCandidate struct {
	// URL is the resolved absolute URL of the link.
	URL string `json:"url"`

	// AnchorText is the trimmed inner text of the anchor element.
	AnchorText string `json:"anchor_text,omitempty"`

	// Priority is the crawl priority score. Higher is more relevant.
	// May be negative for external or deeply nested links.
	Priority int `json:"priority"`
}

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (p *PageRecord) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}

// IsClassified returns true if the page was assigned a concrete type.
func (p *PageRecord) IsClassified() bool {
	return p.PageType.IsClassified()
}

// Host returns the lowercased hostname portion of the page URL,
// or empty string if the URL has no host.
func (p *PageRecord) Host() string {
	rest, ok := strings.CutPrefix(p.URL, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(p.URL, "http://")
		if !ok {
			return ""
		}
	}
	if i := strings.IndexAny(rest, "/?#"); i != -1 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}
