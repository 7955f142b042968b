package domain

import (
	"fmt"
	"sort"
	"strings"
)

// KeywordIgnoreAbove caps the length of values indexed into exact-match
// sub-fields. Longer values remain searchable through the analysed field.
const KeywordIgnoreAbove = 256

// Analyzer identifies the language analysis chain of a text field.
type Analyzer string

// Analyzers used by the verse index.
const (
	// AnalyzerArabic applies lowercase, digit folding, Arabic normalisation and stemming.
	AnalyzerArabic Analyzer = "arabic_analyzer"

	// AnalyzerEnglish is the backend's built-in English analyzer.
	AnalyzerEnglish Analyzer = "english"

	// AnalyzerBangla applies Indic and Bengali normalisation, stop words and stemming.
	AnalyzerBangla Analyzer = "bangla_analyzer"

	// AnalyzerCompletion tokenises completion inputs for prefix suggestions.
	AnalyzerCompletion Analyzer = "completion_analyzer"
)

// Field type names as reported by the backend mapping API.
const (
	TypeLong       = "long"
	TypeInteger    = "integer"
	TypeText       = "text"
	TypeKeyword    = "keyword"
	TypeCompletion = "completion"
)

// NumericFieldSpec describes a numeric verse attribute.
type NumericFieldSpec struct {
	Name string
	Type string
}

// TextFieldSpec binds a text field to its analyzer and sub-fields.
type TextFieldSpec struct {
	Field    TextField
	Analyzer Analyzer

	// Completion adds a prefix-suggestion sub-field.
	Completion bool

	// KeywordIgnoreAbove adds an exact-match sub-field when positive.
	KeywordIgnoreAbove int
}

// IndexSchema is the fixed, versionless definition of a verse index.
// Changing it requires destroying and recreating the index.
type IndexSchema struct {
	Name          string
	Shards        int
	Replicas      int
	NumericFields []NumericFieldSpec
	TextFields    []TextFieldSpec
}

// VerseSchema returns the schema of the verse index.
// The id is an integer field; the document identity is its decimal form.
func VerseSchema(name string, shards, replicas int) IndexSchema {
	return IndexSchema{
		Name:     name,
		Shards:   shards,
		Replicas: replicas,
		NumericFields: []NumericFieldSpec{
			{Name: "id", Type: TypeLong},
			{Name: "sura_no", Type: TypeInteger},
			{Name: "verse_no", Type: TypeInteger},
		},
		TextFields: []TextFieldSpec{
			{Field: FieldArabic, Analyzer: AnalyzerArabic, Completion: true, KeywordIgnoreAbove: KeywordIgnoreAbove},
			{Field: FieldEnglish, Analyzer: AnalyzerEnglish, Completion: true, KeywordIgnoreAbove: KeywordIgnoreAbove},
			{Field: FieldBangla, Analyzer: AnalyzerBangla, Completion: true, KeywordIgnoreAbove: KeywordIgnoreAbove},
		},
	}
}

// Validate checks that the schema can be sent to a backend.
func (s IndexSchema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: index name is required", ErrInvalidInput)
	}
	if s.Name != strings.ToLower(s.Name) {
		return fmt.Errorf("%w: index name %q must be lowercase", ErrInvalidInput, s.Name)
	}
	if s.Shards < 1 {
		return fmt.Errorf("%w: shards must be at least 1", ErrInvalidInput)
	}
	if s.Replicas < 0 {
		return fmt.Errorf("%w: replicas must not be negative", ErrInvalidInput)
	}
	seen := make(map[TextField]bool, len(s.TextFields))
	for _, tf := range s.TextFields {
		if _, err := ParseTextField(string(tf.Field)); err != nil {
			return err
		}
		if seen[tf.Field] {
			return fmt.Errorf("%w: duplicate text field %s", ErrInvalidInput, tf.Field)
		}
		seen[tf.Field] = true
	}
	return nil
}

// TextFieldSpec returns the spec for a field, if present.
func (s IndexSchema) TextFieldSpec(f TextField) (TextFieldSpec, bool) {
	for _, tf := range s.TextFields {
		if tf.Field == f {
			return tf, true
		}
	}
	return TextFieldSpec{}, false
}

// FieldTypes flattens the schema into field path → type, including sub-fields.
// It is compared against the live mapping to detect drift.
func (s IndexSchema) FieldTypes() map[string]string {
	types := make(map[string]string, len(s.NumericFields)+len(s.TextFields)*3)
	for _, nf := range s.NumericFields {
		types[nf.Name] = nf.Type
	}
	for _, tf := range s.TextFields {
		types[string(tf.Field)] = TypeText
		if tf.Completion {
			types[tf.Field.Completion()] = TypeCompletion
		}
		if tf.KeywordIgnoreAbove > 0 {
			types[tf.Field.Keyword()] = TypeKeyword
		}
	}
	return types
}

// SchemaDrift describes a difference between expected and live field types.
type SchemaDrift struct {
	Field    string
	Expected string
	Actual   string
}

// Diff compares the schema with a live mapping. Missing fields report an
// empty Actual; unexpected fields report an empty Expected.
func (s IndexSchema) Diff(live map[string]string) []SchemaDrift {
	expected := s.FieldTypes()
	var drift []SchemaDrift
	for field, want := range expected {
		if got := live[field]; got != want {
			drift = append(drift, SchemaDrift{Field: field, Expected: want, Actual: got})
		}
	}
	for field, got := range live {
		if _, ok := expected[field]; !ok {
			drift = append(drift, SchemaDrift{Field: field, Actual: got})
		}
	}
	sort.Slice(drift, func(i, j int) bool { return drift[i].Field < drift[j].Field })
	return drift
}
