package domain

import "time"

// MaxSuggestions caps the number of suggestions returned per request.
const MaxSuggestions = 5

// FuzzinessAuto lets the backend pick edit distance from term length.
const FuzzinessAuto = "AUTO"

// MatchType selects how a multi-field match combines its fields.
type MatchType string

const (
	// MatchBestFields scores by the best matching field, tolerating typos.
	MatchBestFields MatchType = "best_fields"

	// MatchPhrase requires the terms in order, used for verbatim matches.
	MatchPhrase MatchType = "phrase"
)

// FieldBoost weights a field path inside a clause.
type FieldBoost struct {
	Field string
	Boost float64
}

// MatchClause is one branch of a relevance query.
type MatchClause struct {
	Type      MatchType
	Fields    []FieldBoost
	Fuzziness string
}

// Boost returns the weight of a field path in the clause, 0 if absent.
func (c MatchClause) Boost(field string) float64 {
	for _, fb := range c.Fields {
		if fb.Field == field {
			return fb.Boost
		}
	}
	return 0
}

// HighlightSpec requests highlighted fragments.
// NumberOfFragments 0 returns each field as one unbroken fragment.
type HighlightSpec struct {
	Fields            []TextField
	PreTag            string
	PostTag           string
	NumberOfFragments int
}

// SearchQuery is a compiled relevance query. Clauses in Should are OR'ed.
type SearchQuery struct {
	Text      string
	From      int
	Size      int
	Should    []MatchClause
	Highlight HighlightSpec
}

// Clause returns the first clause of the given type.
func (q SearchQuery) Clause(t MatchType) (MatchClause, bool) {
	for _, c := range q.Should {
		if c.Type == t {
			return c, true
		}
	}
	return MatchClause{}, false
}

// SuggestQuery is a compiled prefix-completion request.
type SuggestQuery struct {
	Prefix         string
	Field          TextField
	Size           int
	SkipDuplicates bool
	Fuzziness      string
}

// CompletionField returns the completion sub-field to query.
func (q SuggestQuery) CompletionField() string {
	return q.Field.Completion()
}

// RangeQuery selects consecutive verses by id: [StartID, StartID+Count).
type RangeQuery struct {
	StartID int64
	Count   int
}

// EndID returns the exclusive upper bound.
func (q RangeQuery) EndID() int64 {
	return q.StartID + int64(q.Count)
}

// Hit is a projected search hit.
// Highlights only holds fields for which the backend returned a fragment.
type Hit struct {
	Verse      Verse                `json:"verse"`
	Score      float64              `json:"score"`
	Highlights map[TextField]string `json:"highlight,omitempty"`
}

// Highlight returns the fragment for a field, if one was returned.
func (h Hit) Highlight(f TextField) (string, bool) {
	frag, ok := h.Highlights[f]
	return frag, ok
}

// SearchResult is the projected response of a search.
// It is built fresh for every request.
type SearchResult struct {
	Hits  []Hit         `json:"hits"`
	Total int64         `json:"total"`
	Took  time.Duration `json:"took"`
}

// Suggestion is a completion candidate.
type Suggestion struct {
	Text string `json:"text"`
}

// VersePage is the result of a consecutive read.
type VersePage struct {
	Verses []Verse `json:"verses"`
	Total  int64   `json:"total"`
}
