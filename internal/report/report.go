// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report orchestrates section generation: it selects source excerpts,
// drives the chunked generator per section, feeds generated text through the
// citation ledger, and assembles the final document. One section's
// irrecoverable failure becomes a visible placeholder in its slot; it never
// aborts the run.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/report-engine/internal/citation"
	"github.com/pdiddy/report-engine/internal/generate"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Orchestrator runs section generation for one report.
type Orchestrator struct {
	gen    *generate.Generator
	ledger *citation.Ledger
	cfg    types.GenerationConfig
	w      io.Writer
}

// NewOrchestrator wires a generator and ledger for one run. Progress and
// warnings go to w.
func NewOrchestrator(gen *generate.Generator, ledger *citation.Ledger, cfg types.GenerationConfig, w io.Writer) *Orchestrator {
	if w == nil {
		w = io.Discard
	}
	return &Orchestrator{gen: gen, ledger: ledger, cfg: cfg, w: w}
}

// Run generates every section in the outline for the subject, grounded in
// the candidate sources. Sources are registered with the ledger before any
// generation starts; the returned slice has one entry per outline section,
// in outline order, with error placeholders for failed sections.
func (o *Orchestrator) Run(ctx context.Context, subject string, outline *types.Outline, sources []types.Source) []types.Section {
	for _, s := range sources {
		o.ledger.Register(s.ID, s.Title, s.Authors, s.Year, s.Downloaded)
	}

	excerpts := selectExcerpts(sources, o.cfg)
	fmt.Fprintf(o.w, "generating %d sections for %s (%d source excerpts)\n",
		len(outline.Sections), subject, len(excerpts))

	if o.cfg.Workers > 1 {
		return o.runConcurrent(ctx, subject, outline, excerpts)
	}
	return o.runSequential(ctx, subject, outline, excerpts)
}

func (o *Orchestrator) runSequential(ctx context.Context, subject string, outline *types.Outline, excerpts []types.Excerpt) []types.Section {
	sections := make([]types.Section, len(outline.Sections))
	for i, spec := range outline.Sections {
		sections[i] = o.generateSection(ctx, o.gen, subject, spec, excerpts)

		if o.cfg.SectionDelay > 0 && i < len(outline.Sections)-1 {
			select {
			case <-ctx.Done():
				return sections
			case <-time.After(o.cfg.SectionDelay):
			}
		}
	}
	return sections
}

// runConcurrent dispatches sections to a bounded worker pool. Each worker
// uses its own generator clone because the fallback position is per-instance
// state; the ledger serializes its own mutation.
func (o *Orchestrator) runConcurrent(ctx context.Context, subject string, outline *types.Outline, excerpts []types.Excerpt) []types.Section {
	sections := make([]types.Section, len(outline.Sections))
	sem := make(chan struct{}, o.cfg.Workers)
	var wg sync.WaitGroup

	for i, spec := range outline.Sections {
		wg.Add(1)
		go func(i int, spec types.SectionSpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			sections[i] = o.generateSection(ctx, o.gen.Clone(), subject, spec, excerpts)
		}(i, spec)
	}
	wg.Wait()
	return sections
}

// generateSection produces one section and records its citations. Failures
// are absorbed into the section's placeholder text.
func (o *Orchestrator) generateSection(ctx context.Context, gen *generate.Generator, subject string, spec types.SectionSpec, excerpts []types.Excerpt) types.Section {
	fmt.Fprintf(o.w, "generating %s\n", spec.Name)

	req := types.GenerationRequest{Subject: subject, Section: spec, Excerpts: excerpts}
	prompt, err := generate.SectionPrompt(req)
	if err != nil {
		return failedSection(spec, err)
	}

	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintf(o.w, "failed  %s: %v\n", spec.Name, err)
		return failedSection(spec, err)
	}

	recorded := o.ledger.ScanSection(spec.Name, text)
	fmt.Fprintf(o.w, "generated %s (%d citations)\n", spec.Name, recorded)

	return types.Section{Name: spec.Name, Title: spec.Title, Text: text}
}

// failedSection builds the visible placeholder for a section whose
// generation failed. Quota exhaustion gets its own wording so the reader
// knows a later retry may succeed.
func failedSection(spec types.SectionSpec, err error) types.Section {
	msg := err.Error()
	var placeholder string
	switch {
	case errors.Is(err, generate.ErrGenerationFailed) && strings.Contains(msg, "quota"):
		placeholder = fmt.Sprintf("[Error: API quota exceeded for %s. Please wait and retry.]", spec.Name)
	default:
		placeholder = fmt.Sprintf("[Error generating %s: %s]", spec.Name, truncate(msg, 200))
	}
	return types.Section{Name: spec.Name, Title: spec.Title, Text: placeholder, Err: msg}
}

// selectExcerpts chooses which sources back the section prompts. Downloaded
// sources come first, richest first; remaining slots go to metadata-only
// sources by citation count.
func selectExcerpts(sources []types.Source, cfg types.GenerationConfig) []types.Excerpt {
	maxTotal := cfg.MaxExcerpts
	if maxTotal <= 0 {
		maxTotal = 20
	}
	maxDownloaded := cfg.MaxDownloadedExcerpts
	if maxDownloaded <= 0 {
		maxDownloaded = 15
	}

	var downloaded, metadata []types.Source
	for _, s := range sources {
		if s.Downloaded {
			downloaded = append(downloaded, s)
		} else {
			metadata = append(metadata, s)
		}
	}

	sort.SliceStable(downloaded, func(i, j int) bool {
		return richness(downloaded[i]) > richness(downloaded[j])
	})
	sort.SliceStable(metadata, func(i, j int) bool {
		return metadata[i].CitationCount > metadata[j].CitationCount
	})

	if len(downloaded) > maxDownloaded {
		downloaded = downloaded[:maxDownloaded]
	}
	remaining := maxTotal - len(downloaded)
	if remaining < 0 {
		remaining = 0
	}
	if len(metadata) > remaining {
		metadata = metadata[:remaining]
	}

	picked := append(downloaded, metadata...)
	excerpts := make([]types.Excerpt, 0, len(picked))
	for _, s := range picked {
		excerpts = append(excerpts, types.Excerpt{
			SourceID:   s.ID,
			Title:      s.Title,
			Authors:    s.Authors,
			Year:       s.Year,
			Abstract:   s.Abstract,
			KeyPoints:  s.KeyPoints,
			Downloaded: s.Downloaded,
		})
	}
	return excerpts
}

// richness ranks downloaded sources by how much prompt material they carry.
func richness(s types.Source) int {
	return len(s.KeyPoints)*10 + len(s.Abstract)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
