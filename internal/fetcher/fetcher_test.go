package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>Acme Corp</title></head><body>Welcome</body></html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Acme Corp") {
		t.Errorf("expected body to contain title, got %q", string(resp.Body))
	}
	if resp.FinalURL != srv.URL {
		t.Errorf("expected final URL %q, got %q", srv.URL, resp.FinalURL)
	}
	if !resp.IsHTML() {
		t.Error("expected HTML response")
	}
}

func TestHTTPFetcher_Fetch_ClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body>Not Found</body></html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("404 pages are retrievable content, got error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Not Found") {
		t.Errorf("expected error page body, got %q", string(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if len(fetchErr.Attempts) != 1 {
		t.Errorf("server answered, expected no scheme retry: got %d attempts", len(fetchErr.Attempts))
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError in chain, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", statusErr.StatusCode)
	}
}

func TestHTTPFetcher_Fetch_SchemeFallback(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>plain http only</body></html>")
	}))
	defer srv.Close()

	// The server speaks plain HTTP, so the https attempt fails at the
	// TLS handshake and the fetcher must fall back to http.
	httpsURL := "https://" + strings.TrimPrefix(srv.URL, "http://")

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), httpsURL)
	if err != nil {
		t.Fatalf("expected scheme fallback to succeed, got %v", err)
	}
	if !strings.HasPrefix(resp.FinalURL, "http://") {
		t.Errorf("expected http final URL after fallback, got %q", resp.FinalURL)
	}
	if !strings.Contains(string(resp.Body), "plain http only") {
		t.Errorf("unexpected body %q", string(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_SelfSignedTLS(t *testing.T) {
	t.Parallel()

	// httptest.NewTLSServer presents a self-signed certificate; small
	// business sites do the same, so verification stays off.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>self signed</body></html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected self-signed certificate to be accepted, got %v", err)
	}
	if !strings.HasPrefix(resp.FinalURL, "https://") {
		t.Errorf("expected https final URL, got %q", resp.FinalURL)
	}
	if !strings.Contains(string(resp.Body), "self signed") {
		t.Errorf("unexpected body %q", string(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_Unreachable(t *testing.T) {
	t.Parallel()

	// Closing the server frees the port, so both scheme variants get
	// connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	f := NewHTTPFetcher()

	_, err := f.Fetch(context.Background(), deadURL)
	if err == nil {
		t.Fatal("expected error for unreachable target")
	}
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if len(fetchErr.Attempts) != 2 {
		t.Errorf("expected both scheme variants attempted, got %d", len(fetchErr.Attempts))
	}
}

func TestHTTPFetcher_Fetch_Compression(t *testing.T) {
	t.Parallel()

	const payload = "<html><body>compressed product catalog</body></html>"

	compress := func(t *testing.T, encoding string) []byte {
		t.Helper()

		var buf bytes.Buffer
		switch encoding {
		case "gzip":
			gz := gzip.NewWriter(&buf)
			if _, err := gz.Write([]byte(payload)); err != nil {
				t.Fatalf("gzip write: %v", err)
			}
			if err := gz.Close(); err != nil {
				t.Fatalf("gzip close: %v", err)
			}
		case "deflate":
			fl, err := flate.NewWriter(&buf, flate.DefaultCompression)
			if err != nil {
				t.Fatalf("flate writer: %v", err)
			}
			if _, err := fl.Write([]byte(payload)); err != nil {
				t.Fatalf("flate write: %v", err)
			}
			if err := fl.Close(); err != nil {
				t.Fatalf("flate close: %v", err)
			}
		case "br":
			br := brotli.NewWriter(&buf)
			if _, err := br.Write([]byte(payload)); err != nil {
				t.Fatalf("brotli write: %v", err)
			}
			if err := br.Close(); err != nil {
				t.Fatalf("brotli close: %v", err)
			}
		}
		return buf.Bytes()
	}

	for _, encoding := range []string{"gzip", "deflate", "br"} {
		t.Run(encoding, func(t *testing.T) {
			t.Parallel()

			body := compress(t, encoding)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Encoding", encoding)
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			f := NewHTTPFetcher()

			resp, err := f.Fetch(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(resp.Body) != payload {
				t.Errorf("expected decoded payload, got %q", string(resp.Body))
			}
		})
	}
}

func TestHTTPFetcher_Fetch_BodyCap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(bytes.Repeat([]byte("a"), 4096))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithMaxBodySize(64))

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("oversized bodies are truncated, not rejected: %v", err)
	}
	if len(resp.Body) != 64 {
		t.Errorf("expected body capped at 64 bytes, got %d", len(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_Redirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>landed</body></html>")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FinalURL != srv.URL+"/landing" {
		t.Errorf("expected final URL %q, got %q", srv.URL+"/landing", resp.FinalURL)
	}
	if !strings.Contains(string(resp.Body), "landed") {
		t.Errorf("expected redirect target body, got %q", string(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_RedirectLoop(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	// The redirect cap returns the last response instead of erroring.
	resp, err := f.Fetch(context.Background(), srv.URL+"/loop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected status 302 after redirect cap, got %d", resp.StatusCode)
	}
}

func TestHTTPFetcher_Fetch_CharsetConversion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body>caf\xe9</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()

	resp, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(resp.Body), "café") {
		t.Errorf("expected UTF-8 converted body, got %q", string(resp.Body))
	}
}

func TestHTTPFetcher_Fetch_RequestHeaders(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotAcceptLanguage, gotCookie, gotAcceptEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAcceptLanguage = r.Header.Get("Accept-Language")
		gotCookie = r.Header.Get("Cookie")
		gotAcceptEncoding = r.Header.Get("Accept-Encoding")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(
		WithUserAgent("testbot/2.0"),
		WithAcceptLanguage("de-DE,de;q=0.7"),
		WithHeaders(map[string]string{"Cookie": "session=abc123"}),
	)

	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUserAgent != "testbot/2.0" {
		t.Errorf("expected custom user agent, got %q", gotUserAgent)
	}
	if gotAcceptLanguage != "de-DE,de;q=0.7" {
		t.Errorf("expected custom accept-language, got %q", gotAcceptLanguage)
	}
	if gotCookie != "session=abc123" {
		t.Errorf("expected cookie header, got %q", gotCookie)
	}
	if gotAcceptEncoding != "gzip, deflate, br" {
		t.Errorf("expected explicit accept-encoding, got %q", gotAcceptEncoding)
	}
}

func TestHTTPFetcher_Fetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher()

	_, err := f.Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if len(fetchErr.Attempts) != 1 {
		t.Errorf("cancellation must not trigger a scheme retry, got %d attempts", len(fetchErr.Attempts))
	}
}

func TestResponse_IsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/pdf", false},
		{"image/png", false},
		{"application/json", false},
		{"text/plain", false},
	}

	for _, tt := range tests {
		t.Run("content type "+tt.contentType, func(t *testing.T) {
			t.Parallel()

			r := &Response{ContentType: tt.contentType}
			if got := r.IsHTML(); got != tt.want {
				t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestSchemeVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rawURL string
		want   []string
	}{
		{
			name:   "https first then http",
			rawURL: "https://example.com/about",
			want:   []string{"https://example.com/about", "http://example.com/about"},
		},
		{
			name:   "http first then https",
			rawURL: "http://example.com",
			want:   []string{"http://example.com", "https://example.com"},
		},
		{
			name:   "bare host defaults to https first",
			rawURL: "example.com",
			want:   []string{"https://example.com", "http://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := schemeVariants(tt.rawURL)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d variants, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("variant %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	t.Run("formats all attempts", func(t *testing.T) {
		t.Parallel()

		fe := &FetchError{
			URL: "example.com",
			Attempts: []AttemptError{
				{URL: "https://example.com", Err: errors.New("connection refused")},
				{URL: "http://example.com", Err: errors.New("connection refused")},
			},
		}

		msg := fe.Error()
		if !strings.Contains(msg, "https://example.com") || !strings.Contains(msg, "http://example.com") {
			t.Errorf("expected both attempts in message, got %q", msg)
		}
	})

	t.Run("empty attempts", func(t *testing.T) {
		t.Parallel()

		fe := &FetchError{URL: "example.com"}
		if !strings.Contains(fe.Error(), "no attempts") {
			t.Errorf("unexpected message %q", fe.Error())
		}
		if fe.Unwrap() != nil {
			t.Error("expected nil unwrap for empty attempts")
		}
	})

	t.Run("matches ErrUnreachable", func(t *testing.T) {
		t.Parallel()

		fe := &FetchError{URL: "example.com"}
		if !errors.Is(fe, ErrUnreachable) {
			t.Error("expected FetchError to match ErrUnreachable")
		}
	})
}
