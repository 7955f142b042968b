package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchClause_Boost(t *testing.T) {
	c := MatchClause{
		Type:   MatchBestFields,
		Fields: []FieldBoost{{Field: "text_arabic", Boost: 3}, {Field: "text_english", Boost: 2}},
	}
	assert.Equal(t, 3.0, c.Boost("text_arabic"))
	assert.Equal(t, 0.0, c.Boost("text_bangla"))
}

func TestSearchQuery_Clause(t *testing.T) {
	q := SearchQuery{Should: []MatchClause{{Type: MatchBestFields}, {Type: MatchPhrase}}}

	c, ok := q.Clause(MatchPhrase)
	assert.True(t, ok)
	assert.Equal(t, MatchPhrase, c.Type)

	_, ok = SearchQuery{}.Clause(MatchPhrase)
	assert.False(t, ok)
}

func TestSuggestQuery_CompletionField(t *testing.T) {
	q := SuggestQuery{Field: FieldEnglish}
	assert.Equal(t, "text_english.completion", q.CompletionField())
}

func TestRangeQuery_EndID(t *testing.T) {
	assert.Equal(t, int64(15), RangeQuery{StartID: 10, Count: 5}.EndID())
}

func TestHit_Highlight(t *testing.T) {
	h := Hit{Highlights: map[TextField]string{FieldEnglish: "<mark>light</mark>"}}

	frag, ok := h.Highlight(FieldEnglish)
	assert.True(t, ok)
	assert.Equal(t, "<mark>light</mark>", frag)

	_, ok = h.Highlight(FieldArabic)
	assert.False(t, ok)
}

func TestBulkOutcome_Failed(t *testing.T) {
	assert.False(t, BulkOutcome{Total: 2, Succeeded: 2}.Failed())
	assert.True(t, BulkOutcome{Failures: []FailedDocument{{}}}.Failed())
}

func TestHealthStatus_Operational(t *testing.T) {
	assert.True(t, HealthGreen.Operational())
	assert.True(t, HealthYellow.Operational())
	assert.False(t, HealthRed.Operational())
	assert.False(t, HealthStatus("").Operational())
}
