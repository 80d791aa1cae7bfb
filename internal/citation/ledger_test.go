// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"bytes"
	"reflect"
	"testing"
)

func newLedgerWithRefs(w *bytes.Buffer) *Ledger {
	l := New(w)
	l.Register("doi-keller", "Conceptualizing, Measuring, and Managing Customer-Based Brand Equity", "Keller", "1993", true)
	l.Register("doi-aaker", "Managing Brand Equity", "Aaker", "1991", false)
	l.Register("doi-holt", "How Brands Become Icons", "Holt", "2004", true)
	return l
}

func TestRegisterIsIdempotentOnOrder(t *testing.T) {
	l := New(nil)
	l.Register("a", "First", "Alpha", "2001", true)
	l.Register("b", "Second", "Beta", "2002", false)
	l.Register("a", "First Revised", "Alpha", "2001", true)

	l.RecordCitation("intro", "a")
	l.RecordCitation("intro", "b")

	got := l.AllCitedSources()
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllCitedSources() = %v, want %v (re-registering must keep position)", got, want)
	}
	r, ok := l.Ref("a")
	if !ok || r.Title != "First Revised" {
		t.Errorf("Ref(a).Title = %q, want overwritten metadata", r.Title)
	}
}

func TestRecordCitationUnregisteredDropsWithWarning(t *testing.T) {
	var warn bytes.Buffer
	l := New(&warn)
	l.RecordCitation("intro", "ghost")

	if got := l.AllCitedSources(); len(got) != 0 {
		t.Errorf("AllCitedSources() = %v, want empty", got)
	}
	if !bytes.Contains(warn.Bytes(), []byte("warning: source ghost not registered")) {
		t.Errorf("missing warning, got %q", warn.String())
	}
}

func TestSourcesCitedInFirstCitedOrder(t *testing.T) {
	var warn bytes.Buffer
	l := newLedgerWithRefs(&warn)

	l.RecordCitation("intro", "doi-holt")
	l.RecordCitation("intro", "doi-keller")
	l.RecordCitation("intro", "doi-holt") // duplicate, keeps original position

	got := l.SourcesCitedIn("intro")
	want := []string{"doi-holt", "doi-keller"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SourcesCitedIn() = %v, want %v", got, want)
	}
}

func TestSectionsCitingSorted(t *testing.T) {
	l := newLedgerWithRefs(nil)
	l.RecordCitation("methods", "doi-keller")
	l.RecordCitation("intro", "doi-keller")

	got := l.SectionsCiting("doi-keller")
	want := []string{"intro", "methods"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SectionsCiting() = %v, want %v", got, want)
	}
}

func TestAllCitedSourcesExcludesUncited(t *testing.T) {
	l := newLedgerWithRefs(nil)
	l.RecordCitation("intro", "doi-aaker")

	got := l.AllCitedSources()
	want := []string{"doi-aaker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllCitedSources() = %v, want %v", got, want)
	}
}

func TestInlineCitationMetadataSuffix(t *testing.T) {
	downloaded := Ref{Title: "Managing Brand Equity", Authors: "Aaker", Year: "1991", Downloaded: true}
	if got := downloaded.InlineCitation(); got != "[From: Managing Brand Equity, Aaker 1991]" {
		t.Errorf("InlineCitation() = %q", got)
	}
	metadata := downloaded
	metadata.Downloaded = false
	if got := metadata.InlineCitation(); got != "[From: Managing Brand Equity, Aaker 1991 - metadata only]" {
		t.Errorf("InlineCitation() = %q", got)
	}
}

func TestStatistics(t *testing.T) {
	l := newLedgerWithRefs(nil)
	l.RecordCitation("intro", "doi-keller")
	l.RecordCitation("body", "doi-keller")
	l.RecordCitation("body", "doi-aaker")

	s := l.Statistics()
	if s.RegisteredSources != 3 {
		t.Errorf("RegisteredSources = %d, want 3", s.RegisteredSources)
	}
	if s.CitedSources != 2 {
		t.Errorf("CitedSources = %d, want 2", s.CitedSources)
	}
	if s.Sections != 2 {
		t.Errorf("Sections = %d, want 2", s.Sections)
	}
	if s.Downloaded != 2 || s.MetadataOnly != 1 {
		t.Errorf("Downloaded/MetadataOnly = %d/%d, want 2/1", s.Downloaded, s.MetadataOnly)
	}
}
