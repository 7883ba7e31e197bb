package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/siteintel/siteintel/internal/model"
)

// MarkdownWriter outputs crawl reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	p := ensureProfile(result)

	md := markdown.NewMarkdown(w.output)
	w.writeHeader(md, result)
	w.writeCoverage(md, p)
	w.writePages(md, result)
	w.writeInsights(md, p)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteProfile outputs only the site profile in Markdown format.
func (w *MarkdownWriter) WriteProfile(p *model.SiteProfile) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Site Profile")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + p.StartURL + "`"},
			{"Generated", p.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(p.PagesCrawled)},
		},
	})
	md.PlainText("")

	w.writeCoverage(md, p)
	w.writeInsights(md, p)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Siteintel Crawl Report")
	md.PlainText("")

	status := "✅ Complete"
	if result.Truncated {
		status = "⚠️ Truncated (page budget reached)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Crawl Scope", "`" + result.BaseURL + "`"},
			{"Crawl Date", result.CrawledAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
			{"Pages Crawled", strconv.Itoa(result.PageCount())},
			{"Status", status},
		},
	})
	md.PlainText("")
}

// writeCoverage writes the page-type coverage section with a
// distribution chart.
func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, p *model.SiteProfile) {
	md.H2("Page Coverage")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllPageTypes()))
	for _, t := range model.AllPageTypes() {
		rows = append(rows, []string{t.String(), strconv.Itoa(p.TypeCounts[t])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if p.PagesCrawled > 0 {
		w.writePieChart(md, p)
	}

	w.writeCoverageAlert(md, p)
}

// writePieChart writes a mermaid pie chart of the page-type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, p *model.SiteProfile) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Type Distribution"),
		piechart.WithShowData(true),
	)

	for _, t := range model.AllPageTypes() {
		if count := p.TypeCounts[t]; count > 0 {
			chart.LabelAndIntValue(t.String(), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeCoverageAlert writes an alert summarizing the coverage state.
func (w *MarkdownWriter) writeCoverageAlert(md *markdown.Markdown, p *model.SiteProfile) {
	switch {
	case p.PagesCrawled == 0:
		md.Cautionf("No pages could be fetched from this site.")
	case p.WarningCount > 0:
		md.Warningf(
			"Site coverage has gaps: %d warning(s). Key pages may be missing or unreachable.",
			p.WarningCount,
		)
	case p.NoticeCount > 0:
		md.Importantf(
			"%d notice(s) recorded. Review them before relying on this profile.",
			p.NoticeCount,
		)
	default:
		md.Tip("All core page types were found within the crawl budget.")
	}
	md.PlainText("")
}

// writePages writes per-category page tables in fetch order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if result.PageCount() == 0 {
		md.PlainText("No pages fetched.")
		md.PlainText("")
		return
	}

	for _, t := range model.AllPageTypes() {
		pages := result.PagesByType(t)
		if len(pages) == 0 {
			continue
		}

		md.PlainText("### " + t.String())
		md.PlainText("")
		w.writePagesTable(md, pages)
	}
}

// writePagesTable writes a table of pages with details.
func (w *MarkdownWriter) writePagesTable(md *markdown.Markdown, pages []model.PageRecord) {
	rows := make([][]string, len(pages))
	for i, page := range pages {
		title := page.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + truncateString(page.URL, 60) + "`",
			truncateString(title, 50),
			strconv.Itoa(page.Depth),
			strconv.Itoa(page.StatusCode),
			strconv.Itoa(page.WordCount),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Depth", "Status", "Words"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeInsights writes all insights grouped by level.
func (w *MarkdownWriter) writeInsights(md *markdown.Markdown, p *model.SiteProfile) {
	md.H2("Insights")
	md.PlainText("")

	if p.TotalInsights() == 0 {
		md.PlainText("No insights recorded.")
		md.PlainText("")
		return
	}

	levels := []struct {
		level  model.InsightLevel
		header string
	}{
		{model.InsightLevelWarning, "### ⚠️ Warnings"},
		{model.InsightLevelNotice, "### 📋 Notices"},
		{model.InsightLevelInfo, "### ℹ️ Info"},
	}

	for _, lv := range levels {
		insights := p.InsightsByLevel(lv.level)
		if len(insights) == 0 {
			continue
		}

		md.PlainText(lv.header)
		md.PlainText("")
		w.writeInsightsTable(md, insights)
	}
}

// writeInsightsTable writes a table of insights with details.
func (w *MarkdownWriter) writeInsightsTable(md *markdown.Markdown, insights []model.Insight) {
	rows := make([][]string, len(insights))
	for i, insight := range insights {
		value := insight.Value
		if value == "" {
			value = "-"
		}
		location := insight.Location
		if location == "" {
			location = "-"
		}

		rows[i] = []string{
			truncateString(insight.Summary, 60),
			truncateString(value, 40),
			truncateString(location, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Observation", "Value", "Location"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [siteintel](https://github.com/siteintel/siteintel)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
