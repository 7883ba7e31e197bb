package report

import (
	"io"

	"github.com/siteintel/siteintel/internal/model"
	"github.com/siteintel/siteintel/internal/profile"
)

// Writer defines the interface for crawl report output.
// Implementations write crawl results in various formats.
type Writer interface {
	// Write outputs the full crawl result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)

	// WriteProfile outputs only the site profile portion.
	// This is useful for quick summaries without per-page details.
	WriteProfile(p *model.SiteProfile) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, for example
// to both the terminal and a file. Writing stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the crawl result to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteProfile outputs the site profile to all configured Writers.
func (m *MultiWriter) WriteProfile(p *model.SiteProfile) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteProfile(p)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// ensureProfile returns the result's profile, building it when the
// crawl did not run the profiler.
func ensureProfile(result *model.CrawlResult) *model.SiteProfile {
	if result.Profile == nil {
		result.Profile = profile.Build(result)
	}
	return result.Profile
}
