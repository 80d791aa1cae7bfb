// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"regexp"
	"strings"
)

// markerRe matches inline citation markers: [From: <title>, <author-year>],
// optionally suffixed inside the bracket with "- metadata only". Titles
// containing commas lose their tail to the comma split; this mirrors how the
// markers are matched everywhere else and is tolerated, not fixed.
var markerRe = regexp.MustCompile(`\[From:\s*([^,\]]+),\s*([^\]]*)\]`)

// Marker is one citation marker found in generated text.
type Marker struct {
	// Title is the source title text inside the marker, quotes stripped.
	Title string

	// AuthorYear is the text after the comma, including any metadata-only
	// suffix.
	AuthorYear string
}

// ExtractMarkers scans generated text for citation markers in document order.
func ExtractMarkers(text string) []Marker {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	markers := make([]Marker, 0, len(matches))
	for _, m := range matches {
		markers = append(markers, Marker{
			Title:      trimTitle(m[1]),
			AuthorYear: strings.TrimSpace(m[2]),
		})
	}
	return markers
}

// trimTitle strips surrounding whitespace and quoting from a marker title.
func trimTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ScanSection extracts citation markers from a section's generated text,
// resolves each against registered sources, and records the resolvable ones.
// It returns the number of citations recorded.
//
// Resolution is best-effort string matching on free-form model output: exact
// title match first, then substring containment in either direction, taking
// the first match in registration order. Unresolved markers are logged and
// dropped. A section with no markers at all is a quality warning, never an
// error.
func (l *Ledger) ScanSection(section, text string) int {
	markers := ExtractMarkers(text)
	if len(markers) == 0 {
		fmt.Fprintf(l.warn, "warning: no citations found in section %s\n", section)
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	recorded := 0
	for _, m := range markers {
		id, ok := l.resolveLocked(m.Title)
		if !ok {
			fmt.Fprintf(l.warn, "warning: unresolved citation marker %q in section %s\n", m.Title, section)
			continue
		}
		l.recordLocked(section, id)
		recorded++
	}
	return recorded
}

// resolveLocked maps a marker title to a registered source ID. Exact match
// wins; otherwise the first registered source whose title contains, or is
// contained by, the marker title.
func (l *Ledger) resolveLocked(title string) (string, bool) {
	for _, id := range l.order {
		if l.refs[id].Title == title {
			return id, true
		}
	}
	for _, id := range l.order {
		ref := l.refs[id]
		if ref.Title == "" || title == "" {
			continue
		}
		if strings.Contains(ref.Title, title) || strings.Contains(title, ref.Title) {
			return id, true
		}
	}
	return "", false
}
