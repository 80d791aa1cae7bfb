// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation tracks which sources each generated section cites, so a
// bibliography can be reconstructed and cross-checked against what the
// generator actually produced.
package citation

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Ref is one registered source in the ledger.
type Ref struct {
	// ID is the source's stable identifier.
	ID string

	// Title is the display title markers resolve against.
	Title string

	// Authors is the display author string.
	Authors string

	// Year is the publication year as a string.
	Year string

	// Downloaded reports whether the full text was available; metadata-only
	// sources render with a suffix in inline citations and the bibliography.
	Downloaded bool
}

// InlineCitation formats the bracketed marker for this source, the exact
// form the generator is instructed to emit.
func (r Ref) InlineCitation() string {
	if r.Downloaded {
		return fmt.Sprintf("[From: %s, %s %s]", r.Title, r.Authors, r.Year)
	}
	return fmt.Sprintf("[From: %s, %s %s - metadata only]", r.Title, r.Authors, r.Year)
}

// Ledger maps sections to cited sources and back. Registration happens once
// per run before generation; citation records accumulate append-only until
// the run's renderer consumes them.
//
// Mutating calls are serialized so sections may be generated concurrently.
type Ledger struct {
	mu sync.Mutex

	refs  map[string]Ref
	order []string // registration order, drives marker resolution and bibliographies

	sectionSources map[string][]string        // section → source IDs in first-cited order
	sourceSections map[string]map[string]bool // source → set of sections

	warn io.Writer
}

// New creates an empty ledger. Warnings about dropped citations go to w.
func New(w io.Writer) *Ledger {
	if w == nil {
		w = io.Discard
	}
	return &Ledger{
		refs:           make(map[string]Ref),
		sectionSources: make(map[string][]string),
		sourceSections: make(map[string]map[string]bool),
		warn:           w,
	}
}

// Register upserts a source. Registering the same ID twice overwrites the
// metadata; the ID keeps its original position in registration order.
func (l *Ledger) Register(id, title, authors, year string, downloaded bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.refs[id]; !exists {
		l.order = append(l.order, id)
	}
	l.refs[id] = Ref{ID: id, Title: title, Authors: authors, Year: year, Downloaded: downloaded}
}

// RecordCitation notes that section cites the source. Citing an unregistered
// source is dropped with a warning; the ledger never creates a reference as
// a side effect of citing it.
func (l *Ledger) RecordCitation(section, sourceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordLocked(section, sourceID)
}

func (l *Ledger) recordLocked(section, sourceID string) {
	if _, ok := l.refs[sourceID]; !ok {
		fmt.Fprintf(l.warn, "warning: source %s not registered, skipping citation in %s\n", sourceID, section)
		return
	}

	for _, id := range l.sectionSources[section] {
		if id == sourceID {
			// Already recorded for this section; keep first-cited order.
			l.sourceSections[sourceID][section] = true
			return
		}
	}
	l.sectionSources[section] = append(l.sectionSources[section], sourceID)

	if l.sourceSections[sourceID] == nil {
		l.sourceSections[sourceID] = make(map[string]bool)
	}
	l.sourceSections[sourceID][section] = true
}

// SourcesCitedIn returns the source IDs cited by a section, in first-cited
// order with no duplicates.
func (l *Ledger) SourcesCitedIn(section string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.sectionSources[section]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// SectionsCiting returns the sorted section names that cite a source.
func (l *Ledger) SectionsCiting(sourceID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sections []string
	for s := range l.sourceSections[sourceID] {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	return sections
}

// AllCitedSources returns every source ID cited at least once, in
// registration order. Sources registered but never cited are excluded.
func (l *Ledger) AllCitedSources() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var cited []string
	for _, id := range l.order {
		if len(l.sourceSections[id]) > 0 {
			cited = append(cited, id)
		}
	}
	return cited
}

// Ref returns the registered reference for a source ID.
func (l *Ledger) Ref(sourceID string) (Ref, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.refs[sourceID]
	return r, ok
}

// Stats summarizes ledger contents for status output.
type Stats struct {
	RegisteredSources int
	CitedSources      int
	Sections          int
	Downloaded        int
	MetadataOnly      int
}

// Statistics reports counts over the current ledger contents.
func (l *Ledger) Statistics() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		RegisteredSources: len(l.refs),
		Sections:          len(l.sectionSources),
	}
	for _, id := range l.order {
		if len(l.sourceSections[id]) > 0 {
			s.CitedSources++
		}
		if l.refs[id].Downloaded {
			s.Downloaded++
		} else {
			s.MetadataOnly++
		}
	}
	return s
}
