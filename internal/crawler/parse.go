package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is the parsed digest of one HTML page. The classifier and
// the link extractor both read from the same parse, so each page is
// parsed exactly once.
type Document struct {
	// Title is the text of the <title> element.
	Title string

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string

	// Heading is the text of the first <h1> element.
	Heading string

	// Text is the visible body text with whitespace collapsed.
	// Script, style, and noscript content is excluded.
	Text string

	// WordCount is the number of whitespace-separated tokens in Text.
	WordCount int

	// doc exposes the parsed tree for selector queries.
	doc *goquery.Document
}

// ParseDocument parses raw HTML into a Document. The parser tolerates
// malformed markup the way browsers do.
func ParseDocument(body []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	gq := goquery.NewDocumentFromNode(root)

	d := &Document{doc: gq}
	d.Title = collapseSpace(gq.Find("title").First().Text())
	d.Heading = collapseSpace(gq.Find("h1").First().Text())

	if desc, ok := gq.Find(`meta[name="description"]`).First().Attr("content"); ok {
		d.MetaDescription = collapseSpace(desc)
	}

	// Script and style text is not page content; it would skew both
	// the word count and the keyword density heuristics.
	gq.Find("script, style, noscript").Remove()

	fields := strings.Fields(gq.Find("body").Text())
	d.Text = strings.Join(fields, " ")
	d.WordCount = len(fields)

	return d, nil
}

// collapseSpace trims and collapses runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
