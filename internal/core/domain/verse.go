package domain

import (
	"fmt"
	"strconv"
)

// Sura numbering bounds.
const (
	MinSura = 1
	MaxSura = 114
)

// Verse is a single verse with its three translations.
// ID is globally unique within an index and doubles as the document identity.
type Verse struct {
	ID          int64  `json:"id"`
	SuraNo      int    `json:"sura_no"`
	VerseNo     int    `json:"verse_no"`
	TextArabic  string `json:"text_arabic"`
	TextEnglish string `json:"text_english"`
	TextBangla  string `json:"text_bangla"`
}

// DocumentID returns the backend document identity for the verse.
func (v Verse) DocumentID() string {
	return strconv.FormatInt(v.ID, 10)
}

// Text returns the content of the given text field.
func (v Verse) Text(f TextField) string {
	switch f {
	case FieldArabic:
		return v.TextArabic
	case FieldEnglish:
		return v.TextEnglish
	case FieldBangla:
		return v.TextBangla
	default:
		return ""
	}
}

// Validate checks the verse invariants that do not depend on the backend.
func (v Verse) Validate() error {
	if v.ID <= 0 {
		return fmt.Errorf("%w: id must be a positive integer, got %d", ErrInvalidInput, v.ID)
	}
	if v.SuraNo < MinSura || v.SuraNo > MaxSura {
		return fmt.Errorf("%w: sura_no must be between %d and %d, got %d",
			ErrInvalidInput, MinSura, MaxSura, v.SuraNo)
	}
	if v.VerseNo < 1 {
		return fmt.Errorf("%w: verse_no must be at least 1, got %d", ErrInvalidInput, v.VerseNo)
	}
	return nil
}

// TextField is one of the three searchable language fields.
type TextField string

// Known text fields. No other value is accepted at the boundary.
const (
	FieldArabic  TextField = "text_arabic"
	FieldEnglish TextField = "text_english"
	FieldBangla  TextField = "text_bangla"
)

// Sub-field suffixes shared by every text field.
const (
	keywordSuffix    = ".keyword"
	completionSuffix = ".completion"
)

// TextFields returns all text fields in canonical order.
func TextFields() []TextField {
	return []TextField{FieldArabic, FieldEnglish, FieldBangla}
}

// ParseTextField validates a field name.
func ParseTextField(name string) (TextField, error) {
	switch f := TextField(name); f {
	case FieldArabic, FieldEnglish, FieldBangla:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (expected one of %s, %s, %s)",
			ErrInvalidField, name, FieldArabic, FieldEnglish, FieldBangla)
	}
}

// String returns the field name.
func (f TextField) String() string {
	return string(f)
}

// Keyword returns the exact-match sub-field path.
func (f TextField) Keyword() string {
	return string(f) + keywordSuffix
}

// Completion returns the prefix-completion sub-field path.
func (f TextField) Completion() string {
	return string(f) + completionSuffix
}
