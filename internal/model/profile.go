package model

import "time"

// SiteProfile is a summarized view of one crawled site, built from the
// crawl result for human-readable output and downstream comparison.
type SiteProfile struct {
	// StartURL is the normalized URL the crawl began from.
	StartURL string `json:"start_url"`

	// GeneratedAt is when the profile was built.
	GeneratedAt time.Time `json:"generated_at"`

	// PagesCrawled is the number of pages the profile was built from.
	PagesCrawled int `json:"pages_crawled"`

	// TypeCounts is the number of pages per classified type.
	TypeCounts map[PageType]int `json:"type_counts,omitempty"`

	// MissingTypes lists the core page types the crawl did not find.
	MissingTypes []PageType `json:"missing_types,omitempty"`

	// Emails contains the unique contact email addresses found on the
	// site, in first-seen order.
	Emails []string `json:"emails,omitempty"`

	// Phones contains the unique phone numbers found on the site,
	// in first-seen order.
	Phones []string `json:"phones,omitempty"`

	// ExternalDomains contains the unique external hosts the site links
	// to, in first-seen order.
	ExternalDomains []string `json:"external_domains,omitempty"`

	// WarningCount is the number of warning-level insights.
	WarningCount int `json:"warning_count"`

	// NoticeCount is the number of notice-level insights.
	NoticeCount int `json:"notice_count"`

	// InfoCount is the number of info-level insights.
	InfoCount int `json:"info_count"`

	// Insights contains all observations in the order they were added.
	Insights []Insight `json:"insights"`
}

// NewSiteProfile creates an empty profile for the given start URL.
func NewSiteProfile(startURL string) *SiteProfile {
	return &SiteProfile{
		StartURL:    startURL,
		GeneratedAt: time.Now(),
		TypeCounts:  make(map[PageType]int),
		Insights:    make([]Insight, 0),
	}
}

// AddInsight appends an insight and updates the level counters.
// Duplicate insights (same type and value) are ignored.
func (p *SiteProfile) AddInsight(insight Insight) {
	for i := range p.Insights {
		if p.Insights[i].Type == insight.Type && p.Insights[i].Value == insight.Value {
			return
		}
	}
	p.Insights = append(p.Insights, insight)
	switch insight.Level {
	case InsightLevelWarning:
		p.WarningCount++
	case InsightLevelNotice:
		p.NoticeCount++
	case InsightLevelInfo:
		p.InfoCount++
	}
}

// TotalInsights returns the total number of insights.
func (p *SiteProfile) TotalInsights() int {
	return len(p.Insights)
}

// HasWarnings returns true if any warning-level insights were recorded.
func (p *SiteProfile) HasWarnings() bool {
	return p.WarningCount > 0
}

// InsightsByLevel returns all insights with the given level,
// in the order they were added.
func (p *SiteProfile) InsightsByLevel(level InsightLevel) []Insight {
	var insights []Insight
	for i := range p.Insights {
		if p.Insights[i].Level == level {
			insights = append(insights, p.Insights[i])
		}
	}
	return insights
}

// CoverageRatio returns the fraction of core page types the crawl found,
// between 0 and 1.
func (p *SiteProfile) CoverageRatio() float64 {
	core := CorePageTypes()
	if len(core) == 0 {
		return 0
	}
	found := 0
	for _, t := range core {
		if p.TypeCounts[t] > 0 {
			found++
		}
	}
	return float64(found) / float64(len(core))
}
