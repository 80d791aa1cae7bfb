// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/store"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Re-render report outputs from the stored run",
	Long: `Render rebuilds the Markdown report, BibTeX references, and source
checklists from the run store without calling any provider. Useful after
tweaking output settings or recovering partial runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repCfg := reportConfig()

		st, err := store.Open(repCfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		subject, err := st.Subject()
		if err != nil {
			return err
		}
		sources, err := st.LoadSources()
		if err != nil {
			return err
		}
		sections, err := st.LoadSections()
		if err != nil {
			return err
		}
		ledger, err := st.LoadLedger(os.Stderr)
		if err != nil {
			return err
		}

		return writeOutputs(repCfg.OutputDir, subject, sources, sections, ledger)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the stored run",
	RunE: func(cmd *cobra.Command, args []string) error {
		repCfg := reportConfig()

		st, err := store.Open(repCfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		sum, err := st.Summarize()
		if err != nil {
			return err
		}

		cmd.Printf("Subject:      %s\n", sum.Subject)
		cmd.Printf("Generated:    %s\n", sum.GeneratedAt)
		cmd.Printf("Sources:      %d (%d downloaded)\n", sum.Sources, sum.Downloaded)
		cmd.Printf("Sections:     %d (%d failed)\n", sum.Sections, sum.FailedSections)
		cmd.Printf("Citations:    %d\n", sum.Citations)

		ledger, err := st.LoadLedger(os.Stderr)
		if err != nil {
			return err
		}
		sections, err := st.LoadSections()
		if err != nil {
			return err
		}
		for _, sec := range sections {
			cited := ledger.SourcesCitedIn(sec.Name)
			cmd.Printf("  %-28s %d citations\n", sec.Name, len(cited))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statusCmd)
}
