package main

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/siteintel/siteintel/internal/config"
	"github.com/siteintel/siteintel/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored crawls for a site",
		Long: `History lists the crawls stored in the local database for a site,
newest first. Without a URL, use --list-sites to see which sites have
stored crawls.

Examples:
  # List all sites with stored crawls
  siteintel history --list-sites

  # List crawls for one site
  siteintel history example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sites", "L", false,
		"List every site with stored crawls")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if listSites {
		return printSites(cmd, db)
	}

	if len(args) == 0 {
		return fmt.Errorf("a site URL is required (or use --list-sites)")
	}

	site, err := siteKeyFromTarget(args[0])
	if err != nil {
		return fmt.Errorf("invalid site %q: %w", args[0], err)
	}

	return printHistory(cmd, db, site)
}

// printSites lists every site with at least one stored crawl.
func printSites(cmd *cobra.Command, db *database.CrawlDB) error {
	sites, err := db.ListSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored crawls.")
		return nil
	}

	for _, site := range sites {
		fmt.Fprintln(cmd.OutOrStdout(), site)
	}
	return nil
}

// printHistory lists the stored crawls for one site, newest first.
func printHistory(cmd *cobra.Command, db *database.CrawlDB, site string) error {
	entries, err := db.History(cmd.Context(), site)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stored crawls for %s.\n", site)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tPAGES\tSTATUS\tTYPES")
	for _, e := range entries {
		status := "complete"
		if e.Truncated {
			status = "truncated"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.PageCount,
			status,
			formatTypeSummary(e.TypeSummary),
		)
	}
	return w.Flush()
}

// formatTypeSummary renders a page type summary as "about:1, home:1".
// Types are sorted for stable output.
func formatTypeSummary(summary map[string]int) string {
	if len(summary) == 0 {
		return "-"
	}

	types := make([]string, 0, len(summary))
	for t := range summary {
		types = append(types, t)
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s:%d", t, summary[t]))
	}
	return strings.Join(parts, ", ")
}

// siteKeyFromTarget turns a CLI target (URL or bare domain) into the
// site key used by the history database.
func siteKeyFromTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("empty site")
	}
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", fmt.Errorf("no host in %q", target)
	}
	return host, nil
}
