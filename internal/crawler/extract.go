package crawler

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteintel/siteintel/internal/model"
)

// staticExtensions are binary and asset extensions excluded from the
// frontier; they carry no classifiable page content.
var staticExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".bmp": {}, ".tif": {}, ".tiff": {},
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".bz2": {},
	".mp3": {}, ".mp4": {}, ".wav": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".webm": {}, ".mkv": {},
	".css": {}, ".js": {}, ".json": {}, ".xml": {}, ".rss": {}, ".atom": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
	".exe": {}, ".dmg": {}, ".apk": {},
}

// skippedHrefSchemes are anchor schemes that never lead to pages.
var skippedHrefSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// LinkExtractor discovers anchors on a page and scores them so the
// frontier serves the most promising pages first. It shares the
// classifier's category tables: link scoring and page classification
// agree on what each category looks like.
type LinkExtractor struct {
	patterns []categoryPattern
}

// NewLinkExtractor creates an extractor over the classifier's tables.
func NewLinkExtractor(c *Classifier) *LinkExtractor {
	return &LinkExtractor{patterns: c.patterns}
}

// Extract returns the page's crawlable links sorted by descending
// priority. Ties keep first-seen document order. Links are resolved
// against currentURL (the URL that actually served the page) and
// scoped against baseURL's host; cross-host links are dropped unless
// followExternal is set. Each link appears once per page.
func (e *LinkExtractor) Extract(doc *Document, currentURL, baseURL string, followExternal bool) []model.LinkCandidate {
	current, err := url.Parse(currentURL)
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	baseDepth := pathSegments(base.Path)

	candidates := make([]model.LinkCandidate, 0)
	seen := make(map[string]bool)

	doc.doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		resolved := resolveHref(current, href)
		if resolved == nil {
			return
		}

		if _, skip := staticExtensions[strings.ToLower(path.Ext(resolved.Path))]; skip {
			return
		}

		external := !sameHost(base.Hostname(), resolved.Hostname())
		if external && !followExternal {
			return
		}

		normalized := normalizeURL(resolved.String())
		if seen[normalized] {
			return
		}
		seen[normalized] = true

		anchorText := collapseSpace(anchor.Text())
		candidates = append(candidates, model.LinkCandidate{
			URL:        normalized,
			AnchorText: anchorText,
			Priority:   e.score(resolved, anchorText, anchor, external, baseDepth),
		})
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	return candidates
}

// score computes a link's crawl priority: base 1, external penalty,
// container bonuses, nesting penalty, then per-category URL and anchor
// matches with the category's fixed boost.
func (e *LinkExtractor) score(link *url.URL, anchorText string, anchor *goquery.Selection, external bool, baseDepth int) int {
	score := 1

	if external {
		score -= 3
	}

	if anchor.ParentsFiltered("nav, header").Length() > 0 {
		score++
	}
	if anchor.ParentsFiltered("main, article").Length() > 0 {
		score++
	}

	// Deep nesting is penalized relative to the base URL, capped so a
	// very deep page is still reachable when category signals are strong.
	if depth := pathSegments(link.Path) - baseDepth; depth > 0 {
		score -= min(depth, 3)
	}

	for i := range e.patterns {
		p := &e.patterns[i]
		matched := false
		if p.matchesPath(link.Path) {
			score += 2
			matched = true
		}
		if p.matchesText(anchorText) {
			score++
			matched = true
		}
		if matched {
			score += p.Boost
		}
	}

	return score
}

// resolveHref turns one href into an absolute HTTP(S) URL without a
// fragment, or nil when the link is not crawlable. A malformed href
// drops only that link; extraction of the page continues.
func resolveHref(current *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}

	lower := strings.ToLower(href)
	for _, scheme := range skippedHrefSchemes {
		if strings.HasPrefix(lower, scheme) {
			return nil
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := current.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	if resolved.Host == "" {
		return nil
	}

	resolved.Fragment = ""
	return resolved
}

// sameHost compares hostnames ignoring case and a leading www.
func sameHost(baseHost, linkHost string) bool {
	return stripWWW(baseHost) == stripWWW(linkHost)
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// pathSegments counts non-empty path segments.
func pathSegments(p string) int {
	count := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			count++
		}
	}
	return count
}
