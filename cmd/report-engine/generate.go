// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-engine/internal/citation"
	"github.com/pdiddy/report-engine/internal/discover"
	"github.com/pdiddy/report-engine/internal/generate"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/internal/store"
	"github.com/pdiddy/report-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <subject>",
	Short: "Generate report sections with inline source citations",
	Long: `Generate produces every section of the report outline for a subject,
grounded in the candidate sources. Each section prompt embeds source excerpts
and a mandatory citation instruction; generated text is scanned for citation
markers and the resolved citations recorded in the run store.

A section whose generation fails after all retries and fallback models is
rendered as a visible error placeholder; the run always produces every
requested section.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := args[0]

		sourcesFile, _ := cmd.Flags().GetString("sources")
		outlineFile, _ := cmd.Flags().GetString("outline")

		sources, err := discover.LoadSources(sourcesFile)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return fmt.Errorf("sources file %s contains no sources", sourcesFile)
		}

		outline := report.DefaultOutline()
		if outlineFile != "" {
			outline, err = report.LoadOutline(outlineFile)
			if err != nil {
				return err
			}
		}

		genCfg := generationConfig()
		applyGenerateFlags(cmd, &genCfg)

		providers, err := buildProviders(cmd.Context(), genCfg)
		if err != nil {
			return err
		}

		gen, err := generate.New(providers, generate.Policy{
			MaxAttempts: genCfg.MaxAttempts,
			BaseDelay:   genCfg.BaseDelay,
			QuotaDelay:  genCfg.QuotaDelay,
		}, genCfg.PromptThreshold, os.Stderr)
		if err != nil {
			return err
		}

		ledger := citation.New(os.Stderr)
		orch := report.NewOrchestrator(gen, ledger, genCfg, os.Stderr)
		sections := orch.Run(cmd.Context(), subject, outline, sources)

		repCfg := reportConfig()
		st, err := store.Open(repCfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SaveRun(subject, sources, sections, ledger); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}

		if err := writeOutputs(repCfg.OutputDir, subject, sources, sections, ledger); err != nil {
			return err
		}

		failed := 0
		for _, sec := range sections {
			if sec.Err != "" {
				failed++
			}
		}
		fmt.Fprintf(os.Stderr, "generated %d sections (%d failed), run stored in %s\n",
			len(sections), failed, repCfg.DBPath)
		if failed > 0 {
			return fmt.Errorf("%d of %d sections failed", failed, len(sections))
		}
		return nil
	},
}

// applyGenerateFlags lets command-line flags override config file values.
func applyGenerateFlags(cmd *cobra.Command, cfg *types.GenerationConfig) {
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts, _ = cmd.Flags().GetInt("max-attempts")
	}
}

// writeOutputs renders the report, BibTeX, and checklists into outputDir.
func writeOutputs(outputDir, subject string, sources []types.Source, sections []types.Section, ledger *citation.Ledger) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := filepath.Join(outputDir, slug(subject))

	md, err := os.Create(base + "_report.md")
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	report.RenderMarkdown(md, subject, sections, ledger)
	if err := md.Close(); err != nil {
		return err
	}

	bib, err := os.Create(base + "_references.bib")
	if err != nil {
		return fmt.Errorf("creating BibTeX file: %w", err)
	}
	report.WriteBibTeX(bib, ledger)
	if err := bib.Close(); err != nil {
		return err
	}

	entries := report.BuildChecklist(sources, ledger)

	csvFile, err := os.Create(base + "_checklist.csv")
	if err != nil {
		return fmt.Errorf("creating checklist CSV: %w", err)
	}
	if err := report.WriteChecklistCSV(csvFile, entries); err != nil {
		csvFile.Close()
		return err
	}
	if err := csvFile.Close(); err != nil {
		return err
	}

	jsonFile, err := os.Create(base + "_checklist.json")
	if err != nil {
		return fmt.Errorf("creating checklist JSON: %w", err)
	}
	if err := report.WriteChecklistJSON(jsonFile, entries); err != nil {
		jsonFile.Close()
		return err
	}
	return jsonFile.Close()
}

// slug makes a subject safe for filenames.
func slug(subject string) string {
	return strings.ReplaceAll(strings.TrimSpace(subject), " ", "_")
}

func init() {
	generateCmd.Flags().String("sources", "sources.yaml", "candidate sources file (YAML)")
	generateCmd.Flags().String("outline", "", "section outline file (YAML); built-in profile outline when omitted")
	generateCmd.Flags().String("model", "", "primary model identifier")
	generateCmd.Flags().Int("workers", 0, "concurrent section generations (<=1 for sequential)")
	generateCmd.Flags().Int("max-attempts", 0, "retry ceiling per provider call")

	rootCmd.AddCommand(generateCmd)
}
