package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siteintel/siteintel/internal/model"
)

// categoryPattern carries every signal for one page category. One
// ordered table drives the URL, title, heading, and body stages of the
// classifier as well as link prioritization, so the heuristics stay
// data-driven and testable apart from the cascade control flow.
type categoryPattern struct {
	// Type is the category this pattern detects.
	Type model.PageType

	// URLPattern matches against the URL path.
	URLPattern *regexp.Regexp

	// TextPattern matches against titles, headings, and anchor text.
	TextPattern *regexp.Regexp

	// Keywords are lowercase signals matched as substrings in text
	// stages and counted for body keyword density. Extra keywords from
	// a request extend this list.
	Keywords []string

	// Boost is the fixed priority bonus for links that point at this
	// category.
	Boost int
}

// matchesPath reports whether the URL path carries this category.
func (p *categoryPattern) matchesPath(path string) bool {
	return path != "" && p.URLPattern.MatchString(path)
}

// matchesText reports whether free text (title, heading, anchor)
// carries this category.
func (p *categoryPattern) matchesText(text string) bool {
	if text == "" {
		return false
	}
	if p.TextPattern.MatchString(text) {
		return true
	}

	lower := strings.ToLower(text)
	for _, kw := range p.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// keywordCount sums keyword occurrences in lowercased body text.
func (p *categoryPattern) keywordCount(lowerText string) int {
	total := 0
	for _, kw := range p.Keywords {
		total += strings.Count(lowerText, kw)
	}
	return total
}

// densityThreshold is the minimum body keyword count for the export and
// certifications categories to match on content alone.
const densityThreshold = 3

// defaultPatterns is the built-in category table. Order matters: the
// first matching category wins at every stage.
var defaultPatterns = []categoryPattern{
	{
		Type:        model.PageTypeAbout,
		URLPattern:  regexp.MustCompile(`(?i)/(about|company|who-we-are|our-(story|team|history)|team)`),
		TextPattern: regexp.MustCompile(`(?i)\b(about( us)?|our (story|company|team|history)|who we are|company profile)\b`),
		Boost:       2,
	},
	{
		Type:        model.PageTypeProducts,
		URLPattern:  regexp.MustCompile(`(?i)/(product|service|solution|shop|catalog|portfolio|range)`),
		TextPattern: regexp.MustCompile(`(?i)\b(products?|services?|solutions?|catalog(ue)?s?|our range|what we (do|offer|make)|shop)\b`),
		Boost:       3,
	},
	{
		Type:        model.PageTypeCertifications,
		URLPattern:  regexp.MustCompile(`(?i)/(certif|accredit|compliance|quality|iso-?\d)`),
		TextPattern: regexp.MustCompile(`(?i)\b(certifi(cation|cate|ed)s?|accredit(ation|ed)s?|compliance|quality (assurance|standards?|management)|iso \d{4,5})\b`),
		Keywords:    []string{"certif", "accredit", "compliance", "iso 9001", "iso 14001", "iso 22000", "haccp", "quality standard", "quality management", "audited"},
		Boost:       3,
	},
	{
		Type:        model.PageTypeExport,
		URLPattern:  regexp.MustCompile(`(?i)/(export|international|global|overseas|markets)`),
		TextPattern: regexp.MustCompile(`(?i)\b(exports?|exporting|international|global (markets?|reach|presence)|worldwide|overseas)\b`),
		Keywords:    []string{"export", "international", "overseas", "worldwide", "shipping", "customs", "incoterms", "freight", "distributor"},
		Boost:       3,
	},
	{
		Type:        model.PageTypeContact,
		URLPattern:  regexp.MustCompile(`(?i)/(contact|get-in-touch|reach-us|enquir|inquir|find-us|locations?)`),
		TextPattern: regexp.MustCompile(`(?i)\b(contact( us)?|get in touch|reach (out|us)|enquir(y|ies)|inquir(y|ies)|find us|visit us)\b`),
		Boost:       1,
	},
}

// contactPhrases are body-text signals for contact pages.
var contactPhrases = []string{"get in touch", "contact us", "send us a message", "reach out to us"}

// productClassPattern matches class attributes that mark product
// listing elements. Bare "item" is excluded: nav-item and list-item
// are layout classes, not product markup.
var productClassPattern = regexp.MustCompile(`(?i)(^|[\s_-])(product|sku|price|listing)([\s_-]|$|s\b)`)

// homepagePaths are the URL paths treated as the site homepage.
var homepagePaths = map[string]struct{}{
	"":            {},
	"/index.html": {},
	"/home":       {},
}

// Classifier assigns one of the fixed page categories to a fetched
// page. Classification is pure: identical (url, document) input always
// yields the same category, with no network access.
type Classifier struct {
	patterns []categoryPattern
}

// NewClassifier creates a classifier. Extra keywords per category
// extend the built-in tables; built-ins are never replaced. Pass nil
// for the defaults.
func NewClassifier(extra map[model.PageType][]string) *Classifier {
	patterns := make([]categoryPattern, len(defaultPatterns))
	copy(patterns, defaultPatterns)

	for i := range patterns {
		extras := extra[patterns[i].Type]
		if len(extras) == 0 {
			continue
		}

		merged := make([]string, 0, len(patterns[i].Keywords)+len(extras))
		merged = append(merged, patterns[i].Keywords...)
		for _, kw := range extras {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				merged = append(merged, kw)
			}
		}
		patterns[i].Keywords = merged
	}

	return &Classifier{patterns: patterns}
}

// Classify runs the classification cascade for the page at rawURL.
// Stages in order: URL path, title, first heading, body heuristics,
// homepage path, unknown. The first positive match wins.
func (c *Classifier) Classify(rawURL string, doc *Document) model.PageType {
	path := urlPath(rawURL)

	for i := range c.patterns {
		if c.patterns[i].matchesPath(path) {
			return c.patterns[i].Type
		}
	}

	if t := c.matchText(doc.Title); t != model.PageTypeUnknown {
		return t
	}

	if t := c.matchText(doc.Heading); t != model.PageTypeUnknown {
		return t
	}

	if t := c.matchBody(doc); t != model.PageTypeUnknown {
		return t
	}

	if isHomepagePath(path) {
		return model.PageTypeHome
	}

	return model.PageTypeUnknown
}

// matchText checks one text signal against every category in order.
func (c *Classifier) matchText(text string) model.PageType {
	for i := range c.patterns {
		if c.patterns[i].matchesText(text) {
			return c.patterns[i].Type
		}
	}
	return model.PageTypeUnknown
}

// matchBody applies the content heuristics: contact signals first,
// then product listing markup, then keyword density for the export and
// certifications categories.
func (c *Classifier) matchBody(doc *Document) model.PageType {
	if hasContactSignals(doc) {
		return model.PageTypeContact
	}

	if countProductElements(doc) > 3 {
		return model.PageTypeProducts
	}

	lowerText := strings.ToLower(doc.Text)
	for i := range c.patterns {
		t := c.patterns[i].Type
		if t != model.PageTypeCertifications && t != model.PageTypeExport {
			continue
		}
		if c.patterns[i].keywordCount(lowerText) >= densityThreshold {
			return t
		}
	}

	return model.PageTypeUnknown
}

// hasContactSignals reports whether the page body looks like a contact
// page: a contact-shaped form (message box or email/phone input), an
// address element, or a contact phrase in the text. A bare <form>
// is not enough; search boxes and newsletter signups are everywhere.
func hasContactSignals(doc *Document) bool {
	contactForm := false
	doc.doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		if form.Find(`textarea, input[type="email"], input[type="tel"]`).Length() > 0 {
			contactForm = true
			return false
		}
		return true
	})
	if contactForm {
		return true
	}

	if doc.doc.Find("address").Length() > 0 {
		return true
	}

	lowerText := strings.ToLower(doc.Text)
	for _, phrase := range contactPhrases {
		if strings.Contains(lowerText, phrase) {
			return true
		}
	}
	return false
}

// countProductElements counts elements carrying product-like markup:
// schema.org Product itemtypes or product listing class names.
func countProductElements(doc *Document) int {
	count := doc.doc.Find(`[itemtype*="Product"]`).Length()

	doc.doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if productClassPattern.MatchString(class) {
			count++
		}
	})

	return count
}

// isHomepagePath reports whether the path names the site homepage.
// Trailing slashes are ignored, so "/" and "/home/" both qualify.
func isHomepagePath(path string) bool {
	normalized := strings.TrimSuffix(strings.ToLower(path), "/")
	_, ok := homepagePaths[normalized]
	return ok
}

// urlPath extracts the decoded path component for pattern matching.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}
