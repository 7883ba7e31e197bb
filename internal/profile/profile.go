package profile

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/siteintel/siteintel/internal/model"
)

// thinContentWords is the average per-page word count below which the
// site is flagged as thin.
const thinContentWords = 50

// assetSuffixes guard against srcset-style tokens like logo@2x.png
// matching the email pattern.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// Builder derives a SiteProfile from a crawl result. Building is pure:
// no network access, and apart from the generation timestamp the same
// result always yields the same profile.
type Builder struct {
	// emailPattern matches email addresses in page text.
	emailPattern *regexp.Regexp

	// phonePattern matches phone-number-shaped digit runs; candidates
	// are filtered by digit count before they are reported.
	phonePattern *regexp.Regexp
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{
		emailPattern: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		phonePattern: regexp.MustCompile(`\+?[0-9][0-9()\s./-]{6,18}[0-9]`),
	}
}

// Build derives the site profile for a crawl result using the default
// builder.
func Build(result *model.CrawlResult) *model.SiteProfile {
	return NewBuilder().Build(result)
}

// Build aggregates page classifications, coverage gaps, and contact
// signals into a SiteProfile.
func (b *Builder) Build(result *model.CrawlResult) *model.SiteProfile {
	p := model.NewSiteProfile(result.StartURL)
	p.PagesCrawled = result.PageCount()
	p.TypeCounts = result.CountByType()

	for _, t := range model.CorePageTypes() {
		if p.TypeCounts[t] == 0 {
			p.MissingTypes = append(p.MissingTypes, t)
		}
	}

	b.addCoverageInsights(p, result)
	b.addContentInsights(p, result)
	b.collectEmails(p, result)
	b.collectPhones(p, result)
	b.collectExternalDomains(p, result)

	return p
}

// addCoverageInsights reports which of the wanted page categories the
// crawl reached.
func (b *Builder) addCoverageInsights(p *model.SiteProfile, result *model.CrawlResult) {
	startFetched := false
	for i := range result.Pages {
		if result.Pages[i].Depth == 0 {
			startFetched = true
			break
		}
	}
	if !startFetched {
		p.AddInsight(model.NewInsight("no_homepage", "", result.StartURL))
	}

	if !result.HasPageType(model.PageTypeContact) {
		p.AddInsight(model.NewInsight("missing_contact_page", "", ""))
	}
	if !result.HasPageType(model.PageTypeProducts) {
		p.AddInsight(model.NewInsight("no_product_pages", "", ""))
	}
	if !result.HasPageType(model.PageTypeAbout) {
		p.AddInsight(model.NewInsight("missing_about_page", "", ""))
	}

	if page := result.FirstPageOfType(model.PageTypeExport); page != nil {
		p.AddInsight(model.NewInsight("export_signals", "", page.URL))
	}
	if page := result.FirstPageOfType(model.PageTypeCertifications); page != nil {
		p.AddInsight(model.NewInsight("certification_signals", "", page.URL))
	}
}

func (b *Builder) addContentInsights(p *model.SiteProfile, result *model.CrawlResult) {
	if strings.HasPrefix(result.BaseURL, "http://") {
		p.AddInsight(model.NewInsight("insecure_scheme", result.BaseURL, ""))
	}

	// One page with an empty frontier is a real single-page site; one
	// page under a budget of one is just a small budget.
	if result.PageCount() == 1 && !result.Truncated {
		p.AddInsight(model.NewInsight("single_page_site", "", result.StartURL))
	}

	if count := result.PageCount(); count > 0 {
		if avg := result.TotalWords() / count; avg < thinContentWords {
			p.AddInsight(model.NewInsight("thin_content", fmt.Sprintf("%d words per page", avg), ""))
		}
	}
}

// collectEmails extracts unique email addresses from page snapshots,
// in first-seen order.
func (b *Builder) collectEmails(p *model.SiteProfile, result *model.CrawlResult) {
	seen := make(map[string]bool)
	for i := range result.Pages {
		page := &result.Pages[i]
		for _, email := range b.emailPattern.FindAllString(page.Snapshot, -1) {
			email = strings.ToLower(email)
			if seen[email] || looksLikeAsset(email) {
				continue
			}
			seen[email] = true
			p.Emails = append(p.Emails, email)
			p.AddInsight(model.NewInsight("email_address", email, page.URL))
		}
	}
}

// collectPhones extracts phone numbers from page snapshots. Candidates
// need 8 to 15 digits and at least one separator, so bare digit runs
// like order numbers stay out. Numbers are deduplicated on their digits,
// which folds formatting variants of one number together.
func (b *Builder) collectPhones(p *model.SiteProfile, result *model.CrawlResult) {
	seen := make(map[string]bool)
	for i := range result.Pages {
		page := &result.Pages[i]
		for _, raw := range b.phonePattern.FindAllString(page.Snapshot, -1) {
			phone := strings.TrimSpace(raw)
			digits := digitsOf(phone)
			if len(digits) < 8 || len(digits) > 15 {
				continue
			}
			if !strings.ContainsAny(phone, "+-()./ ") {
				continue
			}
			if seen[digits] {
				continue
			}
			seen[digits] = true
			p.Phones = append(p.Phones, phone)
			p.AddInsight(model.NewInsight("phone_number", phone, page.URL))
		}
	}
}

// collectExternalDomains records the unique external hosts the crawled
// pages link to. Candidates only carry cross-host links when the crawl
// ran with FollowExternalLinks.
func (b *Builder) collectExternalDomains(p *model.SiteProfile, result *model.CrawlResult) {
	baseHost := hostOf(result.BaseURL)
	seen := make(map[string]bool)

	for i := range result.Pages {
		page := &result.Pages[i]
		for _, link := range page.OutboundLinks {
			host := hostOf(link.URL)
			if host == "" || host == baseHost || seen[host] {
				continue
			}
			seen[host] = true
			p.ExternalDomains = append(p.ExternalDomains, host)
			p.AddInsight(model.NewInsight("external_domain", host, page.URL))
		}
	}
}

func looksLikeAsset(email string) bool {
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// hostOf returns the lowercased hostname without a leading www, or ""
// when the URL does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func digitsOf(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
