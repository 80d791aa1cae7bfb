// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/report-engine/internal/httputil"
	"github.com/pdiddy/report-engine/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// AuthorWorks queries OpenAlex for works by an author and converts them into
// candidate sources. Results arrive most-cited first; availability starts as
// metadata-only and is flipped by the caller once full texts are fetched.
func AuthorWorks(ctx context.Context, client *http.Client, cfg types.DiscoveryConfig, author string) ([]types.Source, error) {
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("empty author query")
	}

	maxSources := cfg.MaxSources
	if maxSources <= 0 {
		maxSources = 50
	}
	if maxSources > 200 {
		maxSources = 200
	}

	params := url.Values{
		"filter":   {"raw_author_name.search:" + author},
		"sort":     {"cited_by_count:desc"},
		"per_page": {fmt.Sprintf("%d", maxSources)},
		"page":     {"1"},
	}
	if cfg.OpenAlexEmail != "" {
		params.Set("mailto", cfg.OpenAlexEmail)
	}

	reqURL := openAlexWorksBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	sources := make([]types.Source, 0, len(oar.Results))
	for _, work := range oar.Results {
		if work.Title == "" {
			continue
		}
		sources = append(sources, workToSource(work))
	}
	return sources, nil
}

// workToSource converts one OpenAlex work into a candidate source.
func workToSource(work openAlexWork) types.Source {
	s := types.Source{
		Title:         work.Title,
		Authors:       formatAuthors(work.Authorships),
		Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
		CitationCount: work.CitedByCount,
	}

	if work.PublicationYear > 0 {
		s.Year = fmt.Sprintf("%d", work.PublicationYear)
	}

	// Prefer DOI as identifier since OpenAlex is DOI-centric.
	// Strip the https://doi.org/ prefix to get the bare DOI.
	if work.DOI != "" {
		s.DOI = strings.TrimPrefix(work.DOI, "https://doi.org/")
		s.ID = s.DOI
	} else {
		s.ID = strings.TrimPrefix(work.ID, "https://openalex.org/")
	}

	return s
}

// formatAuthors renders the display author string used in citations: the
// first author surname, with "et al." when more follow.
func formatAuthors(authorships []openAlexAuthorship) string {
	var names []string
	for _, a := range authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return names[0] + " et al."
	}
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
