// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/report-engine/internal/citation"
	"github.com/pdiddy/report-engine/pkg/types"
)

// RenderMarkdown writes the assembled report: title page, every section in
// outline order (placeholders included), then the bibliography built from
// the ledger. Sources are grouped by whether the full text backed them.
func RenderMarkdown(w io.Writer, subject string, sections []types.Section, ledger *citation.Ledger) {
	fmt.Fprintf(w, "# %s\n\n", subject)
	fmt.Fprintf(w, "Generated report with inline source citations.\n\n")

	for _, sec := range sections {
		fmt.Fprintf(w, "## %s\n\n", sec.Title)
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(sec.Text))
	}

	renderBibliography(w, ledger)
}

// renderBibliography writes the cited-sources listing. Sources registered
// but never cited are excluded.
func renderBibliography(w io.Writer, ledger *citation.Ledger) {
	fmt.Fprintf(w, "## Bibliography & References\n\n")

	cited := ledger.AllCitedSources()
	if len(cited) == 0 {
		fmt.Fprintln(w, "No sources were cited in this report.")
		return
	}

	var downloaded, metadata []citation.Ref
	for _, id := range cited {
		ref, ok := ledger.Ref(id)
		if !ok {
			continue
		}
		if ref.Downloaded {
			downloaded = append(downloaded, ref)
		} else {
			metadata = append(metadata, ref)
		}
	}

	if len(downloaded) > 0 {
		fmt.Fprintf(w, "### Downloaded Sources\n\n")
		for _, ref := range downloaded {
			fmt.Fprintf(w, "- %s. %s. %s.\n", ref.Authors, ref.Title, ref.Year)
		}
		fmt.Fprintln(w)
	}

	if len(metadata) > 0 {
		fmt.Fprintf(w, "### Additional References (Metadata Only)\n\n")
		for _, ref := range metadata {
			fmt.Fprintf(w, "- %s. %s. %s. (Citation from available metadata)\n", ref.Authors, ref.Title, ref.Year)
		}
		fmt.Fprintln(w)
	}
}

// WriteBibTeX produces BibTeX entries for every cited source. Citation keys
// are derived from the first author word and the year.
func WriteBibTeX(w io.Writer, ledger *citation.Ledger) {
	for _, id := range ledger.AllCitedSources() {
		ref, ok := ledger.Ref(id)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "@article{%s,\n", bibKey(ref))
		fmt.Fprintf(w, "  title = {%s},\n", ref.Title)
		if ref.Authors != "" {
			fmt.Fprintf(w, "  author = {%s},\n", ref.Authors)
		}
		if ref.Year != "" {
			fmt.Fprintf(w, "  year = {%s},\n", ref.Year)
		}
		fmt.Fprintf(w, "}\n\n")
	}
}

// bibKey builds an AuthorYear citation key from a reference.
func bibKey(ref citation.Ref) string {
	author := "unknown"
	if fields := strings.Fields(ref.Authors); len(fields) > 0 {
		author = strings.Trim(fields[0], ",.")
	}
	key := author + ref.Year
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return -1
		}
	}, key)
}
