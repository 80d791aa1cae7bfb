// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover supplies the candidate source list a report run starts
// from: sources loaded from a YAML file, optionally enriched from the
// OpenAlex API by author name.
package discover

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-engine/pkg/types"
)

// LoadSources reads a candidate source list from a YAML file.
func LoadSources(path string) ([]types.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	var f types.SourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sources file: %w", err)
	}
	for i, s := range f.Sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source %d missing id", i+1)
		}
		if s.Title == "" {
			return nil, fmt.Errorf("source %s missing title", s.ID)
		}
	}
	return f.Sources, nil
}

// SaveSources writes a candidate source list to a YAML file.
func SaveSources(path string, sources []types.Source) error {
	data, err := yaml.Marshal(types.SourcesFile{Sources: sources})
	if err != nil {
		return fmt.Errorf("marshaling sources: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge combines two candidate lists, keeping the first occurrence of each
// source ID. File-supplied sources win over discovered ones so manual
// availability flags survive a re-discovery.
func Merge(primary, secondary []types.Source) []types.Source {
	seen := make(map[string]bool, len(primary))
	merged := make([]types.Source, 0, len(primary)+len(secondary))
	for _, s := range primary {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		merged = append(merged, s)
	}
	for _, s := range secondary {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		merged = append(merged, s)
	}
	return merged
}
