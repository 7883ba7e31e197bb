package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 10 {
			t.Errorf("expected MaxPages to be 10, got %d", cfg.MaxPages)
		}
	})

	t.Run("default CrawlDepth is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDepth != 3 {
			t.Errorf("expected CrawlDepth to be 3, got %d", cfg.CrawlDepth)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default CrawlDelay is 1.5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.CrawlDelay != 1500*time.Millisecond {
			t.Errorf("expected CrawlDelay to be 1.5s, got %v", cfg.CrawlDelay)
		}
	})

	t.Run("default RespectRobots is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.RespectRobots {
			t.Error("expected RespectRobots to be true")
		}
	})

	t.Run("default FollowExternalLinks is false", func(t *testing.T) {
		t.Parallel()
		if cfg.FollowExternalLinks {
			t.Error("expected FollowExternalLinks to be false")
		}
	})

	t.Run("default Concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != DefaultConcurrency {
			t.Errorf("expected Concurrency to be %d, got %d", DefaultConcurrency, cfg.Concurrency)
		}
	})

	t.Run("default UserAgent is non-empty", func(t *testing.T) {
		t.Parallel()
		if cfg.UserAgent == "" {
			t.Error("expected non-empty UserAgent")
		}
	})

	t.Run("default AcceptLanguage is non-empty", func(t *testing.T) {
		t.Parallel()
		if cfg.AcceptLanguage == "" {
			t.Error("expected non-empty AcceptLanguage")
		}
	})

	t.Run("default DBDir points at XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("multiple targets is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Targets = []string{"https://a.example", "https://b.example", "c.example"}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Targets = []string{}

		err := cfg.Validate()
		if !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("nil targets returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Targets = nil

		err := cfg.Validate()
		if !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("zero max pages returns ErrInvalidMaxPages", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxPages = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidMaxPages) {
			t.Errorf("expected ErrInvalidMaxPages, got %v", err)
		}
	})

	t.Run("zero crawl depth returns ErrInvalidCrawlDepth", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDepth = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidCrawlDepth) {
			t.Errorf("expected ErrInvalidCrawlDepth, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative crawl delay returns ErrInvalidCrawlDelay", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDelay = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidCrawlDelay) {
			t.Errorf("expected ErrInvalidCrawlDelay, got %v", err)
		}
	})

	t.Run("zero crawl delay is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CrawlDelay = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true

		err := cfg.Validate()
		if !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("json only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = false

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("markdown only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = false
		cfg.MarkdownReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = -1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("malformed accept-language returns ErrInvalidAcceptLanguage", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AcceptLanguage = ";;;"

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidAcceptLanguage) {
			t.Errorf("expected ErrInvalidAcceptLanguage, got %v", err)
		}
	})

	t.Run("empty accept-language is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.AcceptLanguage = ""

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when site not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:  5,
				Cookie: "default_cookie=abc",
			},
			Sites: map[string]SiteConfig{},
		}

		cfg := file.GetSiteConfig("unknown.example")
		if cfg.Depth != 5 {
			t.Errorf("expected depth 5, got %d", cfg.Depth)
		}
		if cfg.Cookie != "default_cookie=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("returns site-specific config", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth:  5,
				Cookie: "default_cookie=abc",
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Depth:  2,
					Cookie: "session=xyz",
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Depth != 2 {
			t.Errorf("expected depth 2, got %d", cfg.Depth)
		}
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"X-Default": "value1",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"X-Custom": "value2",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["X-Default"] != "value1" {
			t.Errorf("expected default header, got %v", cfg.Headers)
		}
		if cfg.Headers["X-Custom"] != "value2" {
			t.Errorf("expected custom header, got %v", cfg.Headers)
		}
	})

	t.Run("site headers override default headers", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"Authorization": "default-token",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"Authorization": "site-token",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["Authorization"] != "site-token" {
			t.Errorf("expected site token to override, got %q", cfg.Headers["Authorization"])
		}
	})

	t.Run("merge does not mutate defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{"X-Default": "value1"},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{"X-Custom": "value2"},
				},
			},
		}

		_ = file.GetSiteConfig("example.com")
		if _, ok := file.Defaults.Headers["X-Custom"]; ok {
			t.Error("expected defaults to stay untouched after merge")
		}
	})

	t.Run("keywords merge extends defaults", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Keywords: map[string][]string{
					"products": {"machinery"},
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Keywords: map[string][]string{
						"products": {"pumps"},
						"export":   {"incoterms"},
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if len(cfg.Keywords["products"]) != 2 {
			t.Errorf("expected merged products keywords, got %v", cfg.Keywords["products"])
		}
		if len(cfg.Keywords["export"]) != 1 {
			t.Errorf("expected export keywords, got %v", cfg.Keywords["export"])
		}
	})

	t.Run("boolean overrides apply only when set", func(t *testing.T) {
		t.Parallel()

		no := false
		file := &File{
			Sites: map[string]SiteConfig{
				"example.com": {RespectRobots: &no},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.RespectRobots == nil || *cfg.RespectRobots {
			t.Error("expected RespectRobots override to be false")
		}

		other := file.GetSiteConfig("other.example")
		if other.RespectRobots != nil {
			t.Error("expected no RespectRobots override for other site")
		}
	})

	t.Run("zero depth uses default", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 5,
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Cookie: "session=abc", // no depth specified
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Depth != 5 {
			t.Errorf("expected default depth 5, got %d", cfg.Depth)
		}
		if cfg.Cookie != "session=abc" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Depth: 2,
			},
		}

		cfg := file.GetSiteConfig("any.example")
		if cfg.Depth != 2 {
			t.Errorf("expected depth 2, got %d", cfg.Depth)
		}
	})
}

// TestSiteConfigDelayDuration tests delay parsing.
func TestSiteConfigDelayDuration(t *testing.T) {
	t.Parallel()

	t.Run("empty delay returns not set", func(t *testing.T) {
		t.Parallel()
		sc := SiteConfig{}
		d, ok, err := sc.DelayDuration()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected delay to be unset")
		}
		if d != 0 {
			t.Errorf("expected zero duration, got %v", d)
		}
	})

	t.Run("parses valid delay", func(t *testing.T) {
		t.Parallel()
		sc := SiteConfig{Delay: "750ms"}
		d, ok, err := sc.DelayDuration()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Error("expected delay to be set")
		}
		if d != 750*time.Millisecond {
			t.Errorf("expected 750ms, got %v", d)
		}
	})

	t.Run("returns error for invalid delay", func(t *testing.T) {
		t.Parallel()
		sc := SiteConfig{Delay: "fast"}
		if _, _, err := sc.DelayDuration(); err == nil {
			t.Error("expected error for invalid delay")
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.siteintel")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".siteintel")

		content := `defaults:
  depth: 5
  cookie: "default=abc"
sites:
  example.com:
    depth: 2
    cookie: "session=xyz"
    delay: "2s"
    respectRobots: false
    headers:
      Authorization: "Bearer token"
    keywords:
      products:
        - "machinery"
        - "pumps"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Defaults.Depth != 5 {
			t.Errorf("expected default depth 5, got %d", cfg.Defaults.Depth)
		}
		if cfg.Defaults.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Defaults.Cookie)
		}

		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.Depth != 2 {
			t.Errorf("expected site depth 2, got %d", site.Depth)
		}
		if site.Delay != "2s" {
			t.Errorf("expected site delay 2s, got %q", site.Delay)
		}
		if site.RespectRobots == nil || *site.RespectRobots {
			t.Error("expected respectRobots false")
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
		if len(site.Keywords["products"]) != 2 {
			t.Errorf("expected 2 product keywords, got %v", site.Keywords["products"])
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".siteintel")

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".siteintel")

		content := `defaults:
  depth: 2
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGDataDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGDataDir()
		if dir == "" {
			t.Error("expected non-empty XDG data dir")
		}
	})

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGConfigDir()
		if dir == "" {
			t.Error("expected non-empty XDG config dir")
		}
	})

	t.Run("XDGCacheDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGCacheDir()
		if dir == "" {
			t.Error("expected non-empty XDG cache dir")
		}
	})
}
