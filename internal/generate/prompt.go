// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/report-engine/pkg/types"
)

// Prompts cap per-excerpt content so a handful of rich sources cannot crowd
// out the rest.
const (
	maxAbstractChars = 300
	maxKeyPoints     = 5
)

// sectionPromptTmpl is the prompt sent to the provider for one section. The
// citation requirement is load-bearing: the bracketed [From: ...] form is the
// only contract between free-form output and the citation ledger.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`Generate a {{.Length}} "{{.Title}}" section for {{.Subject}}.

Focus on: {{.Focus}}

Available sources and key points:
{{.Sources}}

CRITICAL MANDATORY REQUIREMENTS (MUST FOLLOW):
1. Write in PARAGRAPH form (not bullet points or lists)
2. YOU MUST add a citation at the END of EVERY single paragraph - no exceptions
3. Citation format: [From: Source Title, Author Year]
4. If the source is not downloaded, add: [From: Source Title, Author Year - metadata only]
5. Each paragraph should be 3-5 sentences
6. Be specific about which source supports each claim
7. If you do not cite sources, the output is INVALID

Example paragraph format:
"This section discusses important concepts from the cited work. The analysis reveals key patterns in the methodology and findings. [From: Source Title, Author Year]"

Generate the complete section now:
`))

// SectionPrompt renders the full prompt for a generation request.
func SectionPrompt(req types.GenerationRequest) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Subject, Title, Length, Focus, Sources string
	}{
		Subject: req.Subject,
		Title:   req.Section.Title,
		Length:  req.Section.Length,
		Focus:   req.Section.Focus,
		Sources: formatExcerpts(req.Excerpts),
	}
	if err := sectionPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering section prompt: %w", err)
	}
	return buf.String(), nil
}

// formatExcerpts renders the numbered source list embedded in the prompt.
func formatExcerpts(excerpts []types.Excerpt) string {
	var b strings.Builder
	for i, ex := range excerpts {
		status := "[METADATA ONLY]"
		if ex.Downloaded {
			status = "[DOWNLOADED]"
		}
		fmt.Fprintf(&b, "\n%d. %q (%s) by %s %s\n", i+1, ex.Title, ex.Year, ex.Authors, status)

		if ex.Abstract != "" {
			fmt.Fprintf(&b, "   Abstract: %s\n", truncate(ex.Abstract, maxAbstractChars))
		}
		points := ex.KeyPoints
		if len(points) > maxKeyPoints {
			points = points[:maxKeyPoints]
		}
		for _, p := range points {
			fmt.Fprintf(&b, "   - %s\n", p)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
