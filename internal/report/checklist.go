// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/report-engine/internal/citation"
	"github.com/pdiddy/report-engine/pkg/types"
)

// ChecklistEntry is one row in the per-source usage checklist.
type ChecklistEntry struct {
	Index          int      `json:"index"`
	SourceID       string   `json:"source_id"`
	Title          string   `json:"title"`
	Authors        string   `json:"authors"`
	Year           string   `json:"year"`
	CitationCount  int      `json:"citation_count"`
	DownloadStatus string   `json:"download_status"`
	SectionsUsed   []string `json:"sections_used"`
}

// BuildChecklist assembles one entry per candidate source, cross-referencing
// the ledger for which sections actually cited it.
func BuildChecklist(sources []types.Source, ledger *citation.Ledger) []ChecklistEntry {
	entries := make([]ChecklistEntry, 0, len(sources))
	for i, s := range sources {
		status := "metadata_only"
		if s.Downloaded {
			status = "downloaded"
		}
		entries = append(entries, ChecklistEntry{
			Index:          i + 1,
			SourceID:       s.ID,
			Title:          s.Title,
			Authors:        s.Authors,
			Year:           s.Year,
			CitationCount:  s.CitationCount,
			DownloadStatus: status,
			SectionsUsed:   ledger.SectionsCiting(s.ID),
		})
	}
	return entries
}

// WriteChecklistCSV writes the checklist as CSV with a header row.
func WriteChecklistCSV(w io.Writer, entries []ChecklistEntry) error {
	cw := csv.NewWriter(w)
	header := []string{"index", "source_id", "title", "authors", "year", "citation_count", "download_status", "sections_used"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing checklist header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.Index),
			e.SourceID,
			e.Title,
			e.Authors,
			e.Year,
			strconv.Itoa(e.CitationCount),
			e.DownloadStatus,
			strings.Join(e.SectionsUsed, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing checklist row %d: %w", e.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChecklistJSON writes the checklist as indented JSON.
func WriteChecklistJSON(w io.Writer, entries []ChecklistEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
