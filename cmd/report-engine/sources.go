// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/discover"
	"github.com/pdiddy/report-engine/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Discover and list candidate sources",
	Long: `Sources manages the candidate source list a report run starts from.
The discover subcommand queries OpenAlex for an author's works; list prints
an existing sources file.`,
}

var sourcesDiscoverCmd = &cobra.Command{
	Use:   "discover <author>",
	Short: "Query OpenAlex for an author's works and write a sources file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		author := args[0]
		out, _ := cmd.Flags().GetString("out")
		mergeExisting, _ := cmd.Flags().GetBool("merge")

		cfg := discoveryConfig()
		client := &http.Client{Timeout: cfg.Timeout}

		found, err := discover.AuthorWorks(cmd.Context(), client, cfg, author)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "found %d works for %s\n", len(found), author)

		sources := found
		if mergeExisting {
			if existing, loadErr := discover.LoadSources(out); loadErr == nil {
				sources = discover.Merge(existing, found)
			}
		}

		if err := discover.SaveSources(out, sources); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d sources to %s\n", len(sources), out)
		return nil
	},
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the candidate sources in a sources file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		sources, err := discover.LoadSources(file)
		if err != nil {
			return err
		}
		printSources(sources)
		return nil
	},
}

func printSources(sources []types.Source) {
	fmt.Printf("%-4s  %-55s  %-20s  %-4s  %-6s  %s\n",
		"Num", "Title", "Authors", "Year", "Cites", "Status")
	fmt.Println(strings.Repeat("-", 104))
	for i, s := range sources {
		status := "metadata"
		if s.Downloaded {
			status = "downloaded"
		}
		fmt.Printf("%-4d  %-55s  %-20s  %-4s  %-6d  %s\n",
			i+1, clip(s.Title, 55), clip(s.Authors, 20), s.Year, s.CitationCount, status)
	}
	fmt.Printf("\n%d sources\n", len(sources))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	sourcesDiscoverCmd.Flags().String("out", "sources.yaml", "output sources file")
	sourcesDiscoverCmd.Flags().Bool("merge", false, "merge with an existing sources file, keeping its entries")
	sourcesListCmd.Flags().String("file", "sources.yaml", "sources file to print")

	sourcesCmd.AddCommand(sourcesDiscoverCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	rootCmd.AddCommand(sourcesCmd)
}
