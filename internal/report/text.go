package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/siteintel/siteintel/internal/model"
)

// TextWriter outputs human-readable text reports. Plain ASCII
// formatting keeps the output portable across terminals and easy to
// pipe to files or other tools.
type TextWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full crawl result in human-readable format.
func (w *TextWriter) Write(result *model.CrawlResult) (int, error) {
	p := ensureProfile(result)

	var sb strings.Builder
	w.writeHeader(&sb, result)
	w.writeCoverage(&sb, p)
	w.writePages(&sb, result)
	w.writeInsights(&sb, p)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteProfile outputs only the site profile in human-readable format.
func (w *TextWriter) WriteProfile(p *model.SiteProfile) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SITE PROFILE\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Site:          %s\n", p.StartURL))
	sb.WriteString(fmt.Sprintf("Generated:     %s\n", p.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n\n", p.PagesCrawled))

	w.writeCoverage(&sb, p)
	w.writeInsights(&sb, p)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *TextWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       SITEINTEL CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Start URL:     %s\n", result.StartURL))
	sb.WriteString(fmt.Sprintf("Crawl Scope:   %s\n", result.BaseURL))
	sb.WriteString(fmt.Sprintf("Crawl Date:    %s\n", result.CrawledAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", result.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages Crawled: %d\n", result.PageCount()))

	if result.Truncated {
		sb.WriteString("Status:        TRUNCATED (page budget reached with candidates remaining)\n")
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeCoverage writes the page-type coverage section.
func (w *TextWriter) writeCoverage(sb *strings.Builder, p *model.SiteProfile) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE COVERAGE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, t := range model.AllPageTypes() {
		count := p.TypeCounts[t]
		if count == 0 && !w.showEmpty && t == model.PageTypeUnknown {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-15s %d\n", t.String()+":", count))
	}
	sb.WriteString("\n")

	if len(p.MissingTypes) > 0 {
		names := make([]string, len(p.MissingTypes))
		for i, t := range p.MissingTypes {
			names[i] = t.String()
		}
		sb.WriteString(fmt.Sprintf("  Missing core pages: %s\n\n", strings.Join(names, ", ")))
	}
}

// writePages writes one line per crawled page in fetch order.
func (w *TextWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	if result.PageCount() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if result.PageCount() == 0 {
		sb.WriteString("  No pages fetched\n\n")
		return
	}

	for _, page := range result.Pages {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", page.PageType, page.URL))
		if page.Title != "" {
			sb.WriteString(fmt.Sprintf("      Title: %s\n", page.Title))
		}
		sb.WriteString(fmt.Sprintf("      Depth: %d  Status: %d  Words: %d\n",
			page.Depth, page.StatusCode, page.WordCount))
		if w.verbose && len(page.OutboundLinks) > 0 {
			sb.WriteString(fmt.Sprintf("      Links: %d\n", len(page.OutboundLinks)))
		}
	}
	sb.WriteString("\n")
}

// writeInsights writes all insights grouped by level, warnings first.
func (w *TextWriter) writeInsights(sb *strings.Builder, p *model.SiteProfile) {
	if p.TotalInsights() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("INSIGHTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	levels := []model.InsightLevel{
		model.InsightLevelWarning,
		model.InsightLevelNotice,
		model.InsightLevelInfo,
	}

	for _, level := range levels {
		insights := p.InsightsByLevel(level)
		if len(insights) == 0 && !w.showEmpty {
			continue
		}
		w.writeInsightsForLevel(sb, level, insights)
	}
}

// writeInsightsForLevel writes insights of a specific level.
func (w *TextWriter) writeInsightsForLevel(sb *strings.Builder, level model.InsightLevel, insights []model.Insight) {
	sb.WriteString(fmt.Sprintf("[%s] %s\n", levelIndicator(level), level.String()))

	if len(insights) == 0 {
		sb.WriteString("  No insights\n\n")
		return
	}

	for _, insight := range insights {
		sb.WriteString(fmt.Sprintf("  * %s\n", insight.Summary))
		if insight.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", insight.Value))
		}
		if insight.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", insight.Location))
		}
	}
	sb.WriteString("\n")
}

// levelIndicator returns a visual indicator for the insight level.
func levelIndicator(level model.InsightLevel) string {
	switch level {
	case model.InsightLevelWarning:
		return "!"
	case model.InsightLevelNotice:
		return "-"
	case model.InsightLevelInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by siteintel\n")
	sb.WriteString("https://github.com/siteintel/siteintel\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
