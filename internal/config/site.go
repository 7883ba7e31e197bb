package config

import "time"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per website, such as supplying
// cookies for gated sites or extending the classification keywords for
// sites in a specific industry.
type SiteConfig struct {
	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie to use when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Delay overrides the global politeness delay for this site.
	// Accepts Go duration syntax such as "500ms" or "2s".
	Delay string `yaml:"delay,omitempty"`

	// RespectRobots overrides the global robots.txt setting for this site.
	// Nil means the global setting applies.
	RespectRobots *bool `yaml:"respectRobots,omitempty"`

	// FollowExternal overrides the global external-link setting for this
	// site. Nil means the global setting applies.
	FollowExternal *bool `yaml:"followExternal,omitempty"`

	// Keywords extends the classification keyword tables for this site.
	// Keys are page type names (about, products, contact, certifications,
	// export); values are extra keywords matched against titles, headings,
	// and body text. Extras never replace the built-in tables.
	Keywords map[string][]string `yaml:"keywords,omitempty"`
}

// DelayDuration parses the Delay field.
// Returns zero duration and false if no delay override is set.
func (sc SiteConfig) DelayDuration() (time.Duration, bool, error) {
	if sc.Delay == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(sc.Delay)
	if err != nil {
		return 0, false, err
	}
	return d, true, nil
}

// File represents the structure of the .siteintel configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys should be the hostname without the protocol (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.Delay != "" {
			result.Delay = siteConfig.Delay
		}
		if siteConfig.RespectRobots != nil {
			result.RespectRobots = siteConfig.RespectRobots
		}
		if siteConfig.FollowExternal != nil {
			result.FollowExternal = siteConfig.FollowExternal
		}
		if len(siteConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(siteConfig.Keywords) > 0 {
			merged := make(map[string][]string, len(result.Keywords)+len(siteConfig.Keywords))
			for k, v := range result.Keywords {
				merged[k] = append([]string(nil), v...)
			}
			for k, v := range siteConfig.Keywords {
				merged[k] = append(merged[k], v...)
			}
			result.Keywords = merged
		}
	}

	return result
}
