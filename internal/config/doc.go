// Package config provides configuration structures and utilities for siteintel.
// It defines the main configuration options for crawling websites,
// per-site overrides, and report generation preferences.
package config
