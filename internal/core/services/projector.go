package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// ResultProjector maps raw backend responses into the service's response shape.
// Backend order, total and took are preserved unmodified.
type ResultProjector struct{}

// NewResultProjector creates a projector.
func NewResultProjector() *ResultProjector {
	return &ResultProjector{}
}

// ProjectSearch maps raw hits to verses with their highlight fragments.
func (p *ResultProjector) ProjectSearch(resp *driven.SearchResponse) (*domain.SearchResult, error) {
	result := &domain.SearchResult{
		Hits:  make([]domain.Hit, 0, len(resp.Hits)),
		Total: resp.Total,
		Took:  resp.Took,
	}
	for _, raw := range resp.Hits {
		verse, err := decodeSource(raw.ID, raw.Source)
		if err != nil {
			return nil, err
		}
		result.Hits = append(result.Hits, domain.Hit{
			Verse:      verse,
			Score:      raw.Score,
			Highlights: projectHighlights(raw.Highlight),
		})
	}
	return result, nil
}

// ProjectSuggestions maps completion options to their text.
func (p *ResultProjector) ProjectSuggestions(options []driven.SuggestOption) []domain.Suggestion {
	suggestions := make([]domain.Suggestion, len(options))
	for i, opt := range options {
		suggestions[i] = domain.Suggestion{Text: opt.Text}
	}
	return suggestions
}

// ProjectVerses maps hits of a range read to bare verses.
func (p *ResultProjector) ProjectVerses(resp *driven.SearchResponse) (*domain.VersePage, error) {
	page := &domain.VersePage{
		Verses: make([]domain.Verse, 0, len(resp.Hits)),
		Total:  resp.Total,
	}
	for _, raw := range resp.Hits {
		verse, err := decodeSource(raw.ID, raw.Source)
		if err != nil {
			return nil, err
		}
		page.Verses = append(page.Verses, verse)
	}
	return page, nil
}

// projectHighlights keeps one fragment per known text field. Fields with no
// fragment are absent from the result. Multiple fragments are joined, which
// only happens when a backend ignores the single-fragment directive.
func projectHighlights(raw map[string][]string) map[domain.TextField]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[domain.TextField]string, len(raw))
	for _, f := range domain.TextFields() {
		frags := raw[f.String()]
		if len(frags) == 0 {
			continue
		}
		out[f] = strings.Join(frags, " … ")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func decodeSource(id string, source []byte) (domain.Verse, error) {
	var v domain.Verse
	if err := json.Unmarshal(source, &v); err != nil {
		return domain.Verse{}, &domain.BackendError{
			Op:     "decode hit",
			Detail: fmt.Sprintf("document %s: %v", id, err),
		}
	}
	return v, nil
}
