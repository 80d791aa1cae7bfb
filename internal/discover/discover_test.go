// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pdiddy/report-engine/pkg/types"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantCount int
		wantErr   bool
	}{
		{
			name: "valid sources",
			yaml: `sources:
  - id: 10.1000/demo
    title: Managing Brand Equity
    authors: Aaker
    year: "1991"
    downloaded: true
    key_points:
      - brand loyalty
  - id: W123
    title: How Brands Become Icons
    citation_count: 500
`,
			wantCount: 2,
		},
		{
			name: "missing id",
			yaml: `sources:
  - title: No ID Here
`,
			wantErr: true,
		},
		{
			name: "missing title",
			yaml: `sources:
  - id: W1
`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			yaml:    ":::bad\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSourcesFile(t, tt.yaml)

			sources, err := LoadSources(path)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sources) != tt.wantCount {
				t.Fatalf("len(sources) = %d, want %d", len(sources), tt.wantCount)
			}
			if !sources[0].Downloaded {
				t.Error("downloaded flag not parsed")
			}
			if sources[1].CitationCount != 500 {
				t.Errorf("CitationCount = %d, want 500", sources[1].CitationCount)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	want := []types.Source{
		{ID: "10.1000/demo", Title: "Managing Brand Equity", Authors: "Aaker", Year: "1991", Downloaded: true, KeyPoints: []string{"loyalty"}},
		{ID: "W123", Title: "How Brands Become Icons", CitationCount: 500},
	}

	if err := SaveSources(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSources(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestMerge(t *testing.T) {
	primary := []types.Source{
		{ID: "a", Title: "A from file", Downloaded: true},
		{ID: "b", Title: "B"},
	}
	secondary := []types.Source{
		{ID: "a", Title: "A discovered"}, // must lose to the file entry
		{ID: "c", Title: "C"},
	}

	merged := Merge(primary, secondary)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}
	if merged[0].Title != "A from file" || !merged[0].Downloaded {
		t.Errorf("merged[0] = %+v, file entry must win", merged[0])
	}
	wantIDs := []string{"a", "b", "c"}
	for i, want := range wantIDs {
		if merged[i].ID != want {
			t.Errorf("merged[%d].ID = %q, want %q", i, merged[i].ID, want)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) = %v, want empty", got)
	}
}
