// Package fetcher retrieves web pages over HTTP and HTTPS.
//
// # Behavior
//
// A fetch tries the URL as requested first. When the transport itself
// fails (DNS, refused connection, TLS handshake, timeout) it retries
// once with the scheme swapped, so "https://example.com" falls back to
// "http://example.com" and vice versa. Server error statuses (5xx) are
// fetch failures without a scheme retry; every status below 500 is
// returned as retrievable content, because 404 and 403 pages still
// carry classifiable signals.
//
// Response bodies are decompressed (gzip, deflate, brotli), converted
// to UTF-8 for HTML content, and truncated at a configurable cap.
// Redirect chains are followed up to ten hops and the final URL is
// reported on the Response so link resolution works against the page
// that actually answered.
//
// # Usage
//
//	f := fetcher.NewHTTPFetcher(
//		fetcher.WithTimeout(30*time.Second),
//		fetcher.WithUserAgent("examplebot/1.0"),
//	)
//	resp, err := f.Fetch(ctx, "https://example.com")
//	if errors.Is(err, fetcher.ErrUnreachable) {
//		// every variant failed; err lists the attempts
//	}
package fetcher
