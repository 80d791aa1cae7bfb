// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestExtractMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Marker
	}{
		{
			name: "single marker",
			text: "Brand equity matters [From: Managing Brand Equity, Aaker 1991].",
			want: []Marker{{Title: "Managing Brand Equity", AuthorYear: "Aaker 1991"}},
		},
		{
			name: "metadata only suffix stays in author-year",
			text: "As shown [From: How Brands Become Icons, Holt 2004 - metadata only].",
			want: []Marker{{Title: "How Brands Become Icons", AuthorYear: "Holt 2004 - metadata only"}},
		},
		{
			name: "quoted title is stripped",
			text: `See [From: "Brand Equity", Keller 1993] for the framework.`,
			want: []Marker{{Title: "Brand Equity", AuthorYear: "Keller 1993"}},
		},
		{
			name: "multiple markers in document order",
			text: "[From: A, X 2001] then [From: B, Y 2002]",
			want: []Marker{
				{Title: "A", AuthorYear: "X 2001"},
				{Title: "B", AuthorYear: "Y 2002"},
			},
		},
		{
			name: "comma in title keeps only the head",
			text: "[From: Diffusion of Innovations, Fifth Edition, Rogers 2003]",
			want: []Marker{{Title: "Diffusion of Innovations", AuthorYear: "Fifth Edition, Rogers 2003"}},
		},
		{
			name: "no markers",
			text: "Plain prose with [brackets] but no citations.",
			want: []Marker{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMarkers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractMarkers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanSectionRoundTrip(t *testing.T) {
	var warn bytes.Buffer
	l := newLedgerWithRefs(&warn)

	ref, _ := l.Ref("doi-aaker")
	text := "Opening claim " + ref.InlineCitation() + ". Restated later " + ref.InlineCitation() + "."

	recorded := l.ScanSection("intro", text)
	if recorded != 2 {
		t.Errorf("recorded = %d, want 2", recorded)
	}
	if got := l.SourcesCitedIn("intro"); !reflect.DeepEqual(got, []string{"doi-aaker"}) {
		t.Errorf("SourcesCitedIn() = %v, want deduplicated single source", got)
	}
	if strings.Contains(warn.String(), "unresolved") {
		t.Errorf("unexpected warning: %q", warn.String())
	}
}

func TestScanSectionSubstringResolution(t *testing.T) {
	l := newLedgerWithRefs(nil)

	// Model abbreviated the registered title; substring match should catch it.
	recorded := l.ScanSection("body", "[From: Managing Brand, Aaker 1991]")
	if recorded != 1 {
		t.Fatalf("recorded = %d, want 1", recorded)
	}
	if got := l.SourcesCitedIn("body"); !reflect.DeepEqual(got, []string{"doi-aaker"}) {
		t.Errorf("SourcesCitedIn() = %v, want [doi-aaker]", got)
	}
}

func TestScanSectionUnresolvedMarkerWarns(t *testing.T) {
	var warn bytes.Buffer
	l := newLedgerWithRefs(&warn)

	recorded := l.ScanSection("body", "[From: Some Invented Work, Nobody 2020]")
	if recorded != 0 {
		t.Errorf("recorded = %d, want 0", recorded)
	}
	if !strings.Contains(warn.String(), "unresolved citation marker") {
		t.Errorf("missing unresolved warning, got %q", warn.String())
	}
}

func TestScanSectionNoMarkersWarns(t *testing.T) {
	var warn bytes.Buffer
	l := newLedgerWithRefs(&warn)

	recorded := l.ScanSection("summary", "Uncited prose.")
	if recorded != 0 {
		t.Errorf("recorded = %d, want 0", recorded)
	}
	if !strings.Contains(warn.String(), "no citations found in section summary") {
		t.Errorf("missing no-citations warning, got %q", warn.String())
	}
}

func TestScanSectionMixedResolvableAndUnknown(t *testing.T) {
	var warn bytes.Buffer
	l := New(&warn)
	l.Register("s1", "Managing Brand Equity", "Aaker", "1991", true)
	l.Register("s2", "How Brands Become Icons", "Holt", "2004", true)
	l.Register("s3", "Uncited Work", "Other", "2010", false)

	text := "Claim one [From: Managing Brand Equity, Aaker 1991]. " +
		"Claim two [From: How Brands Become Icons, Holt 2004]. " +
		"Claim three [From: Phantom Paper Nobody Registered, Ghost 2021]."

	recorded := l.ScanSection("body", text)
	if recorded != 2 {
		t.Errorf("recorded = %d, want 2", recorded)
	}
	if got := l.SourcesCitedIn("body"); !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Errorf("SourcesCitedIn() = %v, want [s1 s2]", got)
	}
	if !strings.Contains(warn.String(), "unresolved citation marker") {
		t.Errorf("missing warning for phantom source, got %q", warn.String())
	}
}

func TestResolvePrefersExactOverSubstring(t *testing.T) {
	l := New(nil)
	l.Register("long", "Brand Equity Measurement Models", "Smith", "2010", true)
	l.Register("exact", "Brand Equity", "Keller", "1993", true)

	l.ScanSection("intro", "[From: Brand Equity, Keller 1993]")
	if got := l.SourcesCitedIn("intro"); !reflect.DeepEqual(got, []string{"exact"}) {
		t.Errorf("SourcesCitedIn() = %v, want exact match to win over earlier substring", got)
	}
}
