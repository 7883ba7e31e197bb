// Package report provides crawl report generation and output.
//
// This package contains writers for different output formats:
//   - TextWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. All writers
// build the site profile on demand when the result does not carry one,
// so callers can hand over a raw crawl result.
package report
