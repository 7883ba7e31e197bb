// Package main provides the entry point for the siteintel CLI.
//
// Siteintel crawls a business website, classifies its pages, and
// produces a structured intelligence report for downstream analysis.
//
// Usage:
//
//	siteintel crawl <url>
//	siteintel crawl --batch <file>
//
// See --help for all available options.
package main

// main is the entry point for siteintel.
func main() {
	Execute()
}
