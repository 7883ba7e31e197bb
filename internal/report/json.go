package report

import (
	"encoding/json"
	"io"

	"github.com/siteintel/siteintel/internal/model"
)

// JSONWriter outputs crawl results in JSON format.
// This format is designed for tool integration and programmatic
// processing, such as handing pages to a downstream classifier.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full crawl result in JSON format.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	ensureProfile(result)
	return w.writeJSON(result)
}

// WriteProfile outputs only the site profile in JSON format.
func (w *JSONWriter) WriteProfile(p *model.SiteProfile) (int, error) {
	return w.writeJSON(p)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output.
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a crawl result with output metadata. Wrapping keeps
// output-specific fields out of the core data structures.
type JSONReport struct {
	// Version is the siteintel version that generated this report.
	Version string `json:"version"`

	// Result is the full crawl result.
	Result *model.CrawlResult `json:"result"`

	// Summary is the site profile for quick access.
	Summary *model.SiteProfile `json:"summary,omitempty"`
}

// FullJSONWriter outputs complete crawl results with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the siteintel version string.
	version string
}

// NewFullJSONWriter creates a writer for complete results with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the crawl result wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.CrawlResult) (int, error) {
	wrapped := &JSONReport{
		Version: w.version,
		Result:  result,
		Summary: ensureProfile(result),
	}
	return w.writeJSON(wrapped)
}
