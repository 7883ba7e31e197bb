// Package main provides the entry point for the siteintel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for siteintel.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "siteintel",
		Short: "Website intelligence crawler for business sites",
		Long: `Siteintel crawls a business website starting from its root URL,
classifies the pages it finds (home, about, products, contact,
certifications, export), and produces a structured report.

The crawler honors robots.txt, waits between requests to the same
host, and follows the most promising links first, so small page
budgets still reach the pages that say the most about a company.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
