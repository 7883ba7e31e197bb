package model

// InsightLevel represents how notable a site profile observation is.
type InsightLevel int

const (
	// InsightLevelInfo indicates contextual observations with no follow-up
	// needed. Examples: contact emails found, export signals present.
	InsightLevelInfo InsightLevel = iota

	// InsightLevelNotice indicates gaps worth reviewing before relying on
	// the profile. Examples: missing about page, thin content.
	InsightLevelNotice

	// InsightLevelWarning indicates gaps that materially limit what the
	// crawl can tell you about the site. Examples: no contact page, the
	// start page itself was unreachable.
	InsightLevelWarning
)

// String returns a human-readable representation of the insight level.
func (l InsightLevel) String() string {
	switch l {
	case InsightLevelInfo:
		return "INFO"
	case InsightLevelNotice:
		return "NOTICE"
	case InsightLevelWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// Insight is a single observation derived from a crawl, such as a missing
// page type or a discovered contact channel.
type Insight struct {
	// Type identifies the kind of observation, e.g. "missing_contact_page".
	Type string `json:"type"`

	// Value is the observed value, if any. For example the email address
	// for an "email_address" insight.
	Value string `json:"value,omitempty"`

	// Level is the notability level of this insight.
	Level InsightLevel `json:"level"`

	// LevelText is the human-readable level, kept in sync with Level
	// for serialized output.
	LevelText string `json:"level_text"`

	// Summary describes what was observed.
	Summary string `json:"summary"`

	// Location is the page URL where the observation was made, when the
	// insight is tied to a specific page.
	Location string `json:"location,omitempty"`
}

// InsightInfo contains metadata about an insight type: its level, a
// summary template, and a suggested follow-up.
type InsightInfo struct {
	Level      InsightLevel
	Summary    string
	Suggestion string
}

// insightInfoMapping maps insight types to their metadata. The profile
// builder emits insight types from this table so levels and wording stay
// consistent across text, JSON, and Markdown output.
var insightInfoMapping = map[string]InsightInfo{
	// WARNING - material gaps in site coverage
	"no_homepage": {
		Level:      InsightLevelWarning,
		Summary:    "The start page could not be fetched, so the profile is built from secondary pages only.",
		Suggestion: "Check that the site is reachable and retry the crawl.",
	},
	"missing_contact_page": {
		Level:      InsightLevelWarning,
		Summary:    "No contact page was found within the crawl budget.",
		Suggestion: "Increase the page budget or check the site manually for contact details.",
	},
	"no_product_pages": {
		Level:      InsightLevelWarning,
		Summary:    "No product or service pages were found within the crawl budget.",
		Suggestion: "Increase the crawl depth or page budget; the catalog may sit behind deeper navigation.",
	},

	// NOTICE - gaps worth reviewing
	"missing_about_page": {
		Level:      InsightLevelNotice,
		Summary:    "No about/company page was found within the crawl budget.",
		Suggestion: "The company background may live on an unusual path; review the unclassified pages.",
	},
	"thin_content": {
		Level:      InsightLevelNotice,
		Summary:    "The crawled pages carry very little visible text.",
		Suggestion: "The site may be rendered client-side; content behind scripts is not captured.",
	},
	"insecure_scheme": {
		Level:      InsightLevelNotice,
		Summary:    "The site is served over plain HTTP.",
		Suggestion: "Treat credentials or form submissions to this site with care.",
	},
	"single_page_site": {
		Level:      InsightLevelNotice,
		Summary:    "Only one page was reachable from the start URL.",
		Suggestion: "The site may be a single-page application or a placeholder.",
	},

	// INFO - contextual observations
	"email_address": {
		Level:      InsightLevelInfo,
		Summary:    "A contact email address was found on the site.",
		Suggestion: "Use the address for outreach; verify it against the contact page.",
	},
	"phone_number": {
		Level:      InsightLevelInfo,
		Summary:    "A phone number was found on the site.",
		Suggestion: "Verify the country code before dialing.",
	},
	"external_domain": {
		Level:      InsightLevelInfo,
		Summary:    "The site links out to an external domain.",
		Suggestion: "External domains may include social profiles, marketplaces, or partner sites.",
	},
	"export_signals": {
		Level:      InsightLevelInfo,
		Summary:    "Export or international trade content was found.",
		Suggestion: "The company likely ships internationally; check the export page for markets served.",
	},
	"certification_signals": {
		Level:      InsightLevelInfo,
		Summary:    "Certification or compliance content was found.",
		Suggestion: "Check the certifications page for standards relevant to your sourcing requirements.",
	},
}

// GetInsightLevel returns the level for an insight type.
// Returns InsightLevelInfo if the insight type is not in the mapping.
func GetInsightLevel(insightType string) InsightLevel {
	if info, ok := insightInfoMapping[insightType]; ok {
		return info.Level
	}
	return InsightLevelInfo
}

// GetInsightInfo returns the full insight information for an insight type.
// Returns a default InsightInfo with InsightLevelInfo if the type is not
// in the mapping.
func GetInsightInfo(insightType string) InsightInfo {
	if info, ok := insightInfoMapping[insightType]; ok {
		return info
	}
	return InsightInfo{
		Level:      InsightLevelInfo,
		Summary:    "Unrecognized observation type.",
		Suggestion: "Review the observation manually.",
	}
}

// NewInsight creates an Insight of the given type with level and summary
// filled from the insight catalog.
func NewInsight(insightType, value, location string) Insight {
	info := GetInsightInfo(insightType)
	return Insight{
		Type:      insightType,
		Value:     value,
		Level:     info.Level,
		LevelText: info.Level.String(),
		Summary:   info.Summary,
		Location:  location,
	}
}
