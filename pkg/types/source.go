// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the report-engine pipeline.
package types

// Source is a candidate source document for report generation: a paper or
// article discovered before generation starts. The metadata is immutable for
// the duration of a run except for Downloaded, which is set once the
// acquisition outcome is known.
type Source struct {
	// ID is a stable identifier for the source (DOI, OpenAlex ID, or slug).
	ID string `json:"id" yaml:"id"`

	// Title is the source's display title.
	Title string `json:"title" yaml:"title"`

	// Authors is the display author string (e.g. "Keller" or "Smith et al.").
	Authors string `json:"authors" yaml:"authors"`

	// Year is the publication year as a string; empty when unknown.
	Year string `json:"year" yaml:"year"`

	// Venue is the journal or conference (optional).
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// DOI is the bare DOI without the https://doi.org/ prefix (optional).
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// CitationCount is how often the source is cited elsewhere. Used to rank
	// metadata-only sources when selecting excerpts.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Downloaded reports whether the full text is locally available. Sources
	// without full text contribute metadata-only excerpts.
	Downloaded bool `json:"downloaded" yaml:"downloaded"`

	// Abstract is the source abstract or summary (optional).
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// KeyPoints are short extracted statements from the full text, used to
	// enrich prompts for downloaded sources.
	KeyPoints []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
}

// SourcesFile holds a candidate source list loaded from sources.yaml.
type SourcesFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}
