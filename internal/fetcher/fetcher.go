package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"

	"github.com/siteintel/siteintel/internal/model"
)

// DefaultMaxBodySize caps the decoded response body at 5MB.
// The cap applies after decompression to bound memory per page.
const DefaultMaxBodySize = 5 * 1024 * 1024

// maxRedirects bounds the redirect chain per fetch. When the limit is
// reached the last response is returned as-is rather than failing.
const maxRedirects = 10

// Response is the outcome of a successful fetch. Any HTTP status below
// 500 counts as success: error pages are still content worth classifying.
type Response struct {
	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body is the decoded response body, decompressed, converted to
	// UTF-8 for HTML content, and capped at the configured size.
	Body []byte

	// FinalURL is the URL that produced the response, after redirects
	// and scheme fallback. Link resolution uses this, not the
	// requested URL.
	FinalURL string

	// ContentType is the value of the Content-Type response header.
	ContentType string

	// Header holds the full response headers.
	Header http.Header
}

// IsHTML reports whether the response carries an HTML document.
func (r *Response) IsHTML() bool {
	return isHTMLContentType(r.ContentType)
}

// isHTMLContentType reports whether the Content-Type names an HTML
// document. An empty value counts as HTML because some servers omit
// the header on landing pages.
func isHTMLContentType(contentType string) bool {
	mediatype := strings.ToLower(strings.TrimSpace(contentType))
	if mediatype == "" {
		return true
	}
	if i := strings.Index(mediatype, ";"); i >= 0 {
		mediatype = strings.TrimSpace(mediatype[:i])
	}
	return mediatype == "text/html" || mediatype == "application/xhtml+xml"
}

// Fetcher retrieves a single web page. Implementations must be safe for
// concurrent use; the batch processor shares one fetcher across crawls.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// HTTPFetcher implements Fetcher over HTTP and HTTPS with scheme
// fallback: when the transport itself fails (DNS, refused connection,
// TLS handshake, timeout) the fetch is retried once with the scheme
// swapped. A server that answered, even with a 5xx status, is reachable,
// so no scheme variant is tried for status failures.
type HTTPFetcher struct {
	// client is the HTTP client shared by all fetches.
	client *http.Client

	// userAgent is sent as the User-Agent header on every request.
	userAgent string

	// acceptLanguage is sent as the Accept-Language header.
	acceptLanguage string

	// headers are extra request headers, set after the defaults so a
	// site override (cookie, authorization) wins.
	headers map[string]string

	// maxBodySize caps the decoded body size in bytes.
	maxBodySize int64

	// logger records fetch attempts at debug level.
	logger *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(timeout time.Duration) Option {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header for every request.
func WithUserAgent(userAgent string) Option {
	return func(f *HTTPFetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithAcceptLanguage sets the Accept-Language header for every request.
func WithAcceptLanguage(acceptLanguage string) Option {
	return func(f *HTTPFetcher) {
		if acceptLanguage != "" {
			f.acceptLanguage = acceptLanguage
		}
	}
}

// WithMaxBodySize caps the decoded response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHeaders adds extra headers to every request. Later options merge
// into, rather than replace, earlier ones.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		if len(headers) == 0 {
			return
		}
		if f.headers == nil {
			f.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithClient replaces the underlying HTTP client. Apply before
// WithTimeout when both are used.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewHTTPFetcher creates a fetcher with browser-like request headers
// and a TLS-lenient client.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:         newLenientClient(model.DefaultRequestTimeout),
		userAgent:      model.DefaultUserAgent,
		acceptLanguage: model.DefaultAcceptLanguage,
		maxBodySize:    DefaultMaxBodySize,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// newLenientClient builds the HTTP client used for crawling. TLS
// verification is disabled: the crawler reads public pages from sites
// that frequently serve self-signed or mismatched certificates.
func newLenientClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // crawler accepts self-signed certificates
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		// Content negotiation and decoding happen in readBody.
		DisableCompression: true,
	}

	// Cookie jar keeps session cookies alive across a crawl, needed for
	// sites that bounce first-time visitors through a cookie redirect.
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// schemeVariants returns the URL as requested followed by its
// scheme-swapped twin. A URL without a scheme gets https first.
func schemeVariants(rawURL string) []string {
	switch {
	case strings.HasPrefix(rawURL, "https://"):
		return []string{rawURL, "http://" + strings.TrimPrefix(rawURL, "https://")}
	case strings.HasPrefix(rawURL, "http://"):
		return []string{rawURL, "https://" + strings.TrimPrefix(rawURL, "http://")}
	default:
		return []string{"https://" + rawURL, "http://" + rawURL}
	}
}

// Fetch downloads rawURL, falling back to the swapped scheme on
// transport failure. The returned error is always a *FetchError
// matching ErrUnreachable.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	fetchErr := &FetchError{URL: rawURL}

	variants := schemeVariants(rawURL)
	for i, variant := range variants {
		resp, err := f.fetchOnce(ctx, variant)
		if err == nil {
			return resp, nil
		}
		fetchErr.Attempts = append(fetchErr.Attempts, AttemptError{URL: variant, Err: err})

		// A status failure means the server answered; swapping the
		// scheme cannot help. Cancellation also ends the attempt list.
		var statusErr *StatusError
		if errors.As(err, &statusErr) || ctx.Err() != nil {
			break
		}

		if i < len(variants)-1 {
			f.logger.Debug("fetch failed, trying scheme variant",
				"url", variant,
				"next", variants[i+1],
				"error", err)
		}
	}

	return nil, fetchErr
}

// fetchOnce performs a single GET against one URL variant.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.acceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := f.readBody(resp, contentType)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		FinalURL:    finalURL,
		ContentType: contentType,
		Header:      resp.Header.Clone(),
	}, nil
}

// readBody decodes the transfer encoding, converts HTML bodies to UTF-8
// and caps the result. The cap applies to decompressed bytes; oversized
// pages are truncated, not rejected.
func (f *HTTPFetcher) readBody(resp *http.Response, contentType string) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close() //nolint:errcheck // read errors surface from io.ReadAll
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close() //nolint:errcheck // read errors surface from io.ReadAll
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	if isHTMLContentType(contentType) {
		// Charset detection falls back to the raw reader on failure;
		// a page we cannot convert is still worth keeping.
		if converted, err := charset.NewReader(reader, contentType); err == nil {
			reader = converted
		}
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize))
	if err != nil {
		return nil, err
	}
	return body, nil
}
