package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

var sampleVerse = domain.Verse{
	ID:          1,
	SuraNo:      1,
	VerseNo:     1,
	TextArabic:  "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ",
	TextEnglish: "In the name of Allah, the Most Gracious, the Most Merciful",
	TextBangla:  "শুরু করছি আল্লাহর নামে",
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search verses", searchCmd.Short)
}

func TestSearchCmd_Flags(t *testing.T) {
	sizeFlag := searchCmd.Flags().Lookup("size")
	require.NotNil(t, sizeFlag)
	assert.Equal(t, "n", sizeFlag.Shorthand)
	assert.Equal(t, "10", sizeFlag.DefValue)

	assert.NotNil(t, searchCmd.Flags().Lookup("from"))
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "search")
	assert.Error(t, err)
}

func TestSearchCmd_JoinsArgsAndPassesPaging(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "search", "most", "merciful", "--from", "5", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, "most merciful", ts.search.gotText)
	assert.Equal(t, 5, ts.search.gotFrom)
	assert.Equal(t, 3, ts.search.gotSize)
}

func TestSearchCmd_Table(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.result = &domain.SearchResult{
		Total: 1,
		Took:  3 * time.Millisecond,
		Hits: []domain.Hit{{
			Verse: sampleVerse,
			Score: 4.5,
			Highlights: map[domain.TextField]string{
				domain.FieldEnglish: "the Most <mark>Merciful</mark>",
			},
		}},
	}

	out, err := execute(t, "search", "merciful")

	require.NoError(t, err)
	assert.Contains(t, out, "1 results")
	assert.Contains(t, out, "1:1")
	assert.Contains(t, out, "score 4.50")
	assert.Contains(t, out, "Merciful")
	assert.NotContains(t, out, "<mark>")
	assert.Contains(t, out, "শুরু করছি")
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.result = &domain.SearchResult{Total: 1, Hits: []domain.Hit{{Verse: sampleVerse, Score: 1}}}

	out, err := execute(t, "search", "merciful", "--json")

	require.NoError(t, err)
	var got domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(1), got.Total)
	assert.Equal(t, sampleVerse, got.Hits[0].Verse)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = domain.ErrBackendUnavailable

	_, err := execute(t, "search", "merciful")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_NilService(t *testing.T) {
	setupTestServices(t)
	svc.Search = nil

	_, err := execute(t, "search", "merciful")

	assert.EqualError(t, err, "search service not configured")
}

func TestSuggestCmd_DefaultField(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.suggestions = []domain.Suggestion{{Text: "In the name of Allah"}, {Text: "Indeed"}}

	out, err := execute(t, "suggest", "In")

	require.NoError(t, err)
	assert.Equal(t, "text_english", ts.search.gotField)
	assert.Contains(t, out, "In the name of Allah")
	assert.Contains(t, out, "Indeed")
}

func TestSuggestCmd_FieldFlag(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "suggest", "بسم", "-f", "text_arabic")

	require.NoError(t, err)
	assert.Equal(t, "text_arabic", ts.search.gotField)
	assert.Contains(t, out, "No suggestions.")
}

func TestSuggestCmd_InvalidField(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = domain.ErrInvalidField

	_, err := execute(t, "suggest", "x", "--field", "title")

	assert.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestReadCmd_Defaults(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.page = &domain.VersePage{Verses: []domain.Verse{sampleVerse}, Total: 1}

	out, err := execute(t, "read")

	require.NoError(t, err)
	assert.Equal(t, int64(1), ts.search.gotStart)
	assert.Equal(t, 5, ts.search.gotCount)
	assert.Contains(t, out, "1:1")
	assert.Contains(t, out, "In the name of Allah")
}

func TestReadCmd_StartAndCount(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "read", "42", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, int64(42), ts.search.gotStart)
	assert.Equal(t, 3, ts.search.gotCount)
	assert.Contains(t, out, "No verses found.")
}

func TestReadCmd_InvalidStart(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "read", "first")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start id")
}

func TestReadCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = errors.New("boom")

	_, err := execute(t, "read", "1")

	assert.EqualError(t, err, "read failed: boom")
}
