// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SectionSpec describes one requested report section.
type SectionSpec struct {
	// Name is the section's stable key (e.g. "executive_summary").
	Name string `json:"name" yaml:"name"`

	// Title is the rendered section heading.
	Title string `json:"title" yaml:"title"`

	// Length is a free-text target length hint passed to the provider
	// (e.g. "2-3 pages").
	Length string `json:"length" yaml:"length"`

	// Focus describes what the section should cover.
	Focus string `json:"focus" yaml:"focus"`
}

// Outline holds the ordered section list for a report.
type Outline struct {
	Sections []SectionSpec `json:"sections" yaml:"sections"`
}

// Excerpt is one source's contribution to a section prompt: bounded metadata
// and key points, plus whether the full text backed it.
type Excerpt struct {
	SourceID   string   `json:"source_id" yaml:"source_id"`
	Title      string   `json:"title" yaml:"title"`
	Authors    string   `json:"authors" yaml:"authors"`
	Year       string   `json:"year" yaml:"year"`
	Abstract   string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	KeyPoints  []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Downloaded bool     `json:"downloaded" yaml:"downloaded"`
}

// GenerationRequest is one unit of generation work: a section to write about
// a subject, grounded in an ordered bag of source excerpts. Immutable once
// constructed; consumed exactly once.
type GenerationRequest struct {
	Subject  string      `json:"subject" yaml:"subject"`
	Section  SectionSpec `json:"section" yaml:"section"`
	Excerpts []Excerpt   `json:"excerpts" yaml:"excerpts"`
}

// Section is one generated report section. Exactly one of Text and Err is
// meaningful: a failed section carries an error placeholder in Text and the
// underlying failure in Err.
type Section struct {
	// Name is the section's stable key from the outline.
	Name string `json:"name" yaml:"name"`

	// Title is the rendered heading.
	Title string `json:"title" yaml:"title"`

	// Text is the generated content, or a visible error placeholder when
	// generation failed.
	Text string `json:"text" yaml:"text"`

	// Err records the generation failure message. Empty on success.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}
