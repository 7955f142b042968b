package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerseSchema_Valid(t *testing.T) {
	s := VerseSchema("quran_verses", 1, 0)
	require.NoError(t, s.Validate())
	assert.Len(t, s.TextFields, 3)

	spec, ok := s.TextFieldSpec(FieldBangla)
	require.True(t, ok)
	assert.Equal(t, AnalyzerBangla, spec.Analyzer)
	assert.True(t, spec.Completion)
	assert.Equal(t, KeywordIgnoreAbove, spec.KeywordIgnoreAbove)
}

func TestIndexSchema_Validate(t *testing.T) {
	tests := []struct {
		name   string
		schema IndexSchema
	}{
		{"empty name", VerseSchema(" ", 1, 0)},
		{"uppercase name", VerseSchema("Verses", 1, 0)},
		{"no shards", VerseSchema("verses", 0, 0)},
		{"negative replicas", VerseSchema("verses", 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.schema.Validate(), ErrInvalidInput))
		})
	}
}

func TestIndexSchema_ValidateRejectsUnknownField(t *testing.T) {
	s := VerseSchema("verses", 1, 0)
	s.TextFields = append(s.TextFields, TextFieldSpec{Field: "text_urdu"})
	assert.True(t, errors.Is(s.Validate(), ErrInvalidField))
}

func TestIndexSchema_ValidateRejectsDuplicateField(t *testing.T) {
	s := VerseSchema("verses", 1, 0)
	s.TextFields = append(s.TextFields, s.TextFields[0])
	assert.True(t, errors.Is(s.Validate(), ErrInvalidInput))
}

func TestIndexSchema_FieldTypes(t *testing.T) {
	types := VerseSchema("verses", 1, 0).FieldTypes()

	assert.Equal(t, TypeLong, types["id"])
	assert.Equal(t, TypeInteger, types["sura_no"])
	assert.Equal(t, TypeText, types["text_english"])
	assert.Equal(t, TypeKeyword, types["text_english.keyword"])
	assert.Equal(t, TypeCompletion, types["text_arabic.completion"])
	assert.Len(t, types, 12)
}

func TestIndexSchema_Diff(t *testing.T) {
	s := VerseSchema("verses", 1, 0)
	live := s.FieldTypes()
	assert.Empty(t, s.Diff(live))

	live["id"] = TypeKeyword
	delete(live, "text_bangla.completion")
	live["ayat_text_english"] = TypeText

	drift := s.Diff(live)
	require.Len(t, drift, 3)
	assert.Equal(t, SchemaDrift{Field: "ayat_text_english", Actual: TypeText}, drift[0])
	assert.Equal(t, SchemaDrift{Field: "id", Expected: TypeLong, Actual: TypeKeyword}, drift[1])
	assert.Equal(t, SchemaDrift{Field: "text_bangla.completion", Expected: TypeCompletion}, drift[2])
}
