package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/siteintel/siteintel/internal/model"
)

// testResult builds a small crawl result covering classified pages,
// an unclassified page, and a truncated crawl.
func testResult() *model.CrawlResult {
	r := model.NewCrawlResult("https://example.com", "https://example.com")
	r.AddPage(model.PageRecord{
		URL:        "https://example.com/",
		Title:      "Example Manufacturing",
		PageType:   model.PageTypeHome,
		WordCount:  220,
		StatusCode: 200,
		Snapshot:   "Example Manufacturing. Contact us at sales@example.com or +27 11 555 0199.",
	})
	r.AddPage(model.PageRecord{
		URL:        "https://example.com/about-us",
		Title:      "About Our Company",
		PageType:   model.PageTypeAbout,
		WordCount:  340,
		Depth:      1,
		StatusCode: 200,
	})
	r.AddPage(model.PageRecord{
		URL:        "https://example.com/misc",
		PageType:   model.PageTypeUnknown,
		WordCount:  90,
		Depth:      1,
		StatusCode: 404,
	})
	r.Truncated = true
	return r
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("Write includes header and pages", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		n, err := w.Write(testResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"SITEINTEL CRAWL REPORT",
			"https://example.com",
			"PAGE COVERAGE",
			"PAGES",
			"[about] https://example.com/about-us",
			"TRUNCATED",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("Write includes insights from the built profile", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		if _, err := w.Write(testResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "INSIGHTS") {
			t.Error("output missing insights section")
		}
		// The fixture has no contact or products pages.
		if !strings.Contains(out, "No contact page was found") {
			t.Error("output missing contact coverage warning")
		}
		if !strings.Contains(out, "sales@example.com") {
			t.Error("output missing extracted email")
		}
	})

	t.Run("WriteProfile outputs summary without pages", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewTextWriter(&buf)

		result := testResult()
		ensureProfile(result)
		if _, err := w.WriteProfile(result.Profile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "SITE PROFILE") {
			t.Error("output missing profile header")
		}
		if strings.Contains(out, "[about] https://example.com/about-us") {
			t.Error("profile output should not list individual pages")
		}
	})

	t.Run("empty result reports no pages", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewTextWriter(&buf, WithShowEmpty(true))

		empty := model.NewCrawlResult("https://example.com", "https://example.com")
		if _, err := w.Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No pages fetched") {
			t.Error("output missing empty pages marker")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(testResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.CrawlResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.StartURL != "https://example.com" {
			t.Errorf("expected start URL, got %q", decoded.StartURL)
		}
		if len(decoded.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(decoded.Pages))
		}
		if decoded.Profile == nil {
			t.Error("expected embedded profile in JSON output")
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(testResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"start_url\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("WriteProfile emits only the profile", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		result := testResult()
		if _, err := w.WriteProfile(ensureProfile(result)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.SiteProfile
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.PagesCrawled != 3 {
			t.Errorf("expected 3 pages crawled, got %d", decoded.PagesCrawled)
		}
	})

	t.Run("FullJSONWriter wraps with version", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(testResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %q", wrapped.Version)
		}
		if wrapped.Result == nil || wrapped.Summary == nil {
			t.Error("expected result and summary in wrapper")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("Write produces markdown sections", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(testResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Siteintel Crawl Report",
			"## Page Coverage",
			"## Pages",
			"## Insights",
			"### about",
			"pie",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("empty result skips chart", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		empty := model.NewCrawlResult("https://example.com", "https://example.com")
		if _, err := w.Write(empty); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if strings.Contains(out, "pie showData") {
			t.Error("expected no pie chart for empty result")
		}
		if !strings.Contains(out, "No pages fetched.") {
			t.Error("output missing empty pages marker")
		}
	})
}

// failWriter always fails, for MultiWriter error propagation tests.
type failWriter struct{}

func (failWriter) Write(*model.CrawlResult) (int, error) {
	return 0, errors.New("write failed")
}

func (failWriter) WriteProfile(*model.SiteProfile) (int, error) {
	return 0, errors.New("write failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()
		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))

		n, err := mw.Write(testResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, a.Len()+b.Len())
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		mw := NewMultiWriter(failWriter{}, NewTextWriter(&buf))

		if _, err := mw.Write(testResult()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected no output after failing writer")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "short", maxLen: 10, want: "short"},
		{name: "long string truncated", input: "a very long string here", maxLen: 10, want: "a very ..."},
		{name: "tiny limit keeps prefix", input: "abcdef", maxLen: 2, want: "ab"},
		{name: "exact length unchanged", input: "exact", maxLen: 5, want: "exact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
