// Package crawler implements a polite, priority-driven website crawler.
//
// A crawl starts from one URL and explores the site breadth-first,
// except that discovered links are scored and the frontier always
// serves the highest-scoring link next. Scores favor links that look
// like about, products, certifications, export, or contact pages, so
// small page budgets still land on the pages that say the most about
// a company.
//
// # Pipeline
//
// Each dequeued URL passes through robots.txt gating, a per-host
// politeness delay, the fetch, HTML parsing, classification, and link
// extraction. Failures at any stage skip that URL and the crawl moves
// on; only an unusable request aborts a crawl.
//
// # Sessions
//
// One Crawler serves many requests. Every request gets its own
// frontier, visited set, robots cache, and rate limiters, so crawls
// never leak state into each other.
//
// # Usage
//
//	c := crawler.New()
//	result, err := c.Crawl(ctx, model.NewCrawlRequest("example.com"))
//	if err != nil {
//		return err
//	}
//	for _, page := range result.Pages {
//		fmt.Println(page.URL, page.PageType)
//	}
package crawler
