// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-engine/pkg/types"
)

// LoadOutline reads a section outline from a YAML file.
func LoadOutline(path string) (*types.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var outline types.Outline
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	if len(outline.Sections) == 0 {
		return nil, fmt.Errorf("outline %s contains no sections", path)
	}
	for i, s := range outline.Sections {
		if s.Name == "" || s.Title == "" {
			return nil, fmt.Errorf("outline section %d missing name or title", i+1)
		}
	}
	return &outline, nil
}

// DefaultOutline returns the built-in profile report structure used when no
// outline file is supplied.
func DefaultOutline() *types.Outline {
	return &types.Outline{Sections: []types.SectionSpec{
		{
			Name:   "executive_summary",
			Title:  "Executive Summary",
			Length: "2-3 pages",
			Focus:  "Complete overview of the subject and their contributions",
		},
		{
			Name:   "personality_profile",
			Title:  "Personality Profile & Communication Style",
			Length: "6-8 pages",
			Focus:  "Communication patterns, personality traits, values",
		},
		{
			Name:   "intellectual_profile",
			Title:  "Intellectual Profile & Mindset",
			Length: "8-10 pages",
			Focus:  "Core beliefs, problem-solving, decision-making, innovation",
		},
		{
			Name:   "domain_expertise",
			Title:  "Domain Expertise & Knowledge Base",
			Length: "10-12 pages",
			Focus:  "Key concepts, frameworks, methodologies, contributions",
		},
		{
			Name:   "research_methodology",
			Title:  "Research Methodology & Approach",
			Length: "6-8 pages",
			Focus:  "Methodological preferences, study designs, validation",
		},
		{
			Name:   "professional_background",
			Title:  "Professional Background & Journey",
			Length: "4-5 pages",
			Focus:  "Career evolution, education, achievements",
		},
		{
			Name:   "evolution_of_ideas",
			Title:  "Evolution of Ideas & Thinking",
			Length: "6-8 pages",
			Focus:  "Conceptual development over time, intellectual trajectory",
		},
		{
			Name:   "thought_leadership",
			Title:  "Thought Leadership & Public Presence",
			Length: "5-7 pages",
			Focus:  "Books, articles, speaking, public engagement",
		},
		{
			Name:   "collaboration_network",
			Title:  "Collaboration & Network Influence",
			Length: "4-5 pages",
			Focus:  "Co-author networks, collaborations, influence",
		},
	}}
}
