// Package batch crawls multiple start URLs concurrently.
//
// Crawls of different sites are independent: each request gets its own
// crawl session, so the only shared resource is the fetcher's HTTP
// client. The Processor bounds cross-site parallelism with an errgroup
// limit while per-host politeness stays inside each crawl.
package batch
