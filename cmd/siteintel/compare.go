package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteintel/siteintel/internal/config"
	"github.com/siteintel/siteintel/internal/database"
	"github.com/siteintel/siteintel/internal/model"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Compare the two most recent crawls of a site",
		Long: `Compare diffs the latest stored crawl of a site against the one
before it: pages that appeared, pages that disappeared, pages whose
classification changed, and per-type count changes.

Use --with-id to compare the latest crawl against a specific earlier
crawl instead (see "siteintel history" for IDs).

Examples:
  # Compare the two most recent crawls
  siteintel compare example.com

  # Compare the latest crawl against crawl 3
  siteintel compare --with-id 3 example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare the latest crawl against this crawl ID instead of the previous one")
	cmd.Flags().BoolP("json", "j", false,
		"Output the diff as JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the history database")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	site, err := siteKeyFromTarget(args[0])
	if err != nil {
		return fmt.Errorf("invalid site %q: %w", args[0], err)
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	entries, err := db.History(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no stored crawls for %s", site)
	}

	latestMeta := entries[0]
	latest, err := db.CrawlByID(ctx, latestMeta.ID)
	if err != nil {
		return fmt.Errorf("failed to load crawl %d: %w", latestMeta.ID, err)
	}
	if latest == nil {
		return fmt.Errorf("crawl %d not found", latestMeta.ID)
	}

	baselineID := withID
	if baselineID == 0 {
		if len(entries) < 2 {
			return fmt.Errorf("only one stored crawl for %s, nothing to compare", site)
		}
		baselineID = entries[1].ID
	}
	if baselineID == latestMeta.ID {
		return fmt.Errorf("crawl %d is the latest crawl, nothing to compare", baselineID)
	}

	baseline, err := db.CrawlByID(ctx, baselineID)
	if err != nil {
		return fmt.Errorf("failed to load crawl %d: %w", baselineID, err)
	}
	if baseline == nil {
		return fmt.Errorf("crawl %d not found", baselineID)
	}

	diff := diffCrawls(baselineID, latestMeta.ID, baseline, latest)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	}
	printDiff(cmd, site, diff)
	return nil
}

// CrawlDiff is the difference between two stored crawls of one site.
type CrawlDiff struct {
	// BaselineID identifies the older crawl.
	BaselineID int64 `json:"baseline_id"`

	// LatestID identifies the newer crawl.
	LatestID int64 `json:"latest_id"`

	// BaselineAt is when the older crawl ran.
	BaselineAt time.Time `json:"baseline_at"`

	// LatestAt is when the newer crawl ran.
	LatestAt time.Time `json:"latest_at"`

	// AddedPages lists URLs present only in the newer crawl.
	AddedPages []string `json:"added_pages,omitempty"`

	// RemovedPages lists URLs present only in the older crawl.
	RemovedPages []string `json:"removed_pages,omitempty"`

	// TypeChanges lists pages whose classification changed.
	TypeChanges []TypeChange `json:"type_changes,omitempty"`

	// TypeCounts holds per-type page count deltas.
	TypeCounts []TypeCountDelta `json:"type_counts,omitempty"`
}

// TypeChange records a page reclassified between two crawls.
type TypeChange struct {
	URL    string `json:"url"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// TypeCountDelta records how many pages of one type each crawl found.
type TypeCountDelta struct {
	Type     string `json:"type"`
	Baseline int    `json:"baseline"`
	Latest   int    `json:"latest"`
}

// HasChanges reports whether the two crawls differ at all.
func (d *CrawlDiff) HasChanges() bool {
	return len(d.AddedPages) > 0 || len(d.RemovedPages) > 0 || len(d.TypeChanges) > 0
}

// diffCrawls computes the page-level diff between two crawl results.
func diffCrawls(baselineID, latestID int64, baseline, latest *model.CrawlResult) *CrawlDiff {
	diff := &CrawlDiff{
		BaselineID: baselineID,
		LatestID:   latestID,
		BaselineAt: baseline.CrawledAt,
		LatestAt:   latest.CrawledAt,
	}

	before := make(map[string]model.PageType, len(baseline.Pages))
	for _, p := range baseline.Pages {
		before[p.URL] = p.PageType
	}
	after := make(map[string]model.PageType, len(latest.Pages))
	for _, p := range latest.Pages {
		after[p.URL] = p.PageType
	}

	for u, t := range after {
		prev, ok := before[u]
		switch {
		case !ok:
			diff.AddedPages = append(diff.AddedPages, u)
		case prev != t:
			diff.TypeChanges = append(diff.TypeChanges, TypeChange{
				URL:    u,
				Before: prev.String(),
				After:  t.String(),
			})
		}
	}
	for u := range before {
		if _, ok := after[u]; !ok {
			diff.RemovedPages = append(diff.RemovedPages, u)
		}
	}

	sort.Strings(diff.AddedPages)
	sort.Strings(diff.RemovedPages)
	sort.Slice(diff.TypeChanges, func(i, j int) bool {
		return diff.TypeChanges[i].URL < diff.TypeChanges[j].URL
	})

	baseCounts := baseline.CountByType()
	latestCounts := latest.CountByType()
	for _, t := range model.AllPageTypes() {
		b, l := baseCounts[t], latestCounts[t]
		if b == 0 && l == 0 {
			continue
		}
		diff.TypeCounts = append(diff.TypeCounts, TypeCountDelta{
			Type:     t.String(),
			Baseline: b,
			Latest:   l,
		})
	}

	return diff
}

// printDiff renders a crawl diff as text.
func printDiff(cmd *cobra.Command, site string, diff *CrawlDiff) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Comparing crawls of %s\n", site)
	fmt.Fprintf(out, "  baseline: crawl %d (%s)\n", diff.BaselineID, diff.BaselineAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "  latest:   crawl %d (%s)\n\n", diff.LatestID, diff.LatestAt.Format("2006-01-02 15:04"))

	if !diff.HasChanges() {
		fmt.Fprintln(out, "No page changes.")
	}

	if len(diff.AddedPages) > 0 {
		fmt.Fprintf(out, "Added pages (%d):\n", len(diff.AddedPages))
		for _, u := range diff.AddedPages {
			fmt.Fprintf(out, "  + %s\n", u)
		}
		fmt.Fprintln(out)
	}

	if len(diff.RemovedPages) > 0 {
		fmt.Fprintf(out, "Removed pages (%d):\n", len(diff.RemovedPages))
		for _, u := range diff.RemovedPages {
			fmt.Fprintf(out, "  - %s\n", u)
		}
		fmt.Fprintln(out)
	}

	if len(diff.TypeChanges) > 0 {
		fmt.Fprintf(out, "Reclassified pages (%d):\n", len(diff.TypeChanges))
		for _, c := range diff.TypeChanges {
			fmt.Fprintf(out, "  ~ %s: %s -> %s\n", c.URL, c.Before, c.After)
		}
		fmt.Fprintln(out)
	}

	if len(diff.TypeCounts) > 0 {
		fmt.Fprintln(out, "Page types:")
		for _, tc := range diff.TypeCounts {
			marker := " "
			switch {
			case tc.Latest > tc.Baseline:
				marker = "+"
			case tc.Latest < tc.Baseline:
				marker = "-"
			}
			fmt.Fprintf(out, "  %s %-15s %d -> %d\n", marker, tc.Type, tc.Baseline, tc.Latest)
		}
	}
}
