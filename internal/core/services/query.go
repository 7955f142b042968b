package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Default highlight markers.
const (
	DefaultPreTag  = "<mark>"
	DefaultPostTag = "</mark>"
)

// Consecutive read bounds.
const (
	DefaultReadCount = 5
	MaxReadCount     = 50
)

// Boosts holds per-field weights for both query branches.
type Boosts struct {
	Fuzzy  map[domain.TextField]float64
	Phrase map[domain.TextField]float64
}

// DefaultBoosts weights Arabic highest, then English, then Bangla.
// Every phrase weight is twice the fuzzy weight of the same field so that
// verbatim matches outrank typo-tolerant ones.
func DefaultBoosts() Boosts {
	return Boosts{
		Fuzzy: map[domain.TextField]float64{
			domain.FieldArabic:  3,
			domain.FieldEnglish: 2,
			domain.FieldBangla:  1,
		},
		Phrase: map[domain.TextField]float64{
			domain.FieldArabic:  6,
			domain.FieldEnglish: 4,
			domain.FieldBangla:  2,
		},
	}
}

// Validate requires a positive weight for every field in both branches.
func (b Boosts) Validate() error {
	for _, f := range domain.TextFields() {
		if b.Fuzzy[f] <= 0 {
			return fmt.Errorf("%w: fuzzy boost for %s must be positive", domain.ErrInvalidInput, f)
		}
		if b.Phrase[f] <= 0 {
			return fmt.Errorf("%w: phrase boost for %s must be positive", domain.ErrInvalidInput, f)
		}
	}
	return nil
}

// QueryCompilerConfig tunes the compiled queries.
type QueryCompilerConfig struct {
	Boosts  Boosts
	PreTag  string
	PostTag string
}

// DefaultQueryCompilerConfig returns the default boosts and markers.
func DefaultQueryCompilerConfig() QueryCompilerConfig {
	return QueryCompilerConfig{
		Boosts:  DefaultBoosts(),
		PreTag:  DefaultPreTag,
		PostTag: DefaultPostTag,
	}
}

// QueryCompiler turns user input into backend-neutral queries.
// It never touches the network; invalid input is rejected here.
type QueryCompiler struct {
	boosts  Boosts
	preTag  string
	postTag string
}

// NewQueryCompiler validates the configuration and creates a compiler.
func NewQueryCompiler(cfg QueryCompilerConfig) (*QueryCompiler, error) {
	if err := cfg.Boosts.Validate(); err != nil {
		return nil, err
	}
	if cfg.PreTag == "" {
		cfg.PreTag = DefaultPreTag
	}
	if cfg.PostTag == "" {
		cfg.PostTag = DefaultPostTag
	}
	for _, f := range domain.TextFields() {
		if cfg.Boosts.Phrase[f] <= cfg.Boosts.Fuzzy[f] {
			logger.Warn("Phrase boost for %s (%.1f) does not exceed fuzzy boost (%.1f); verbatim matches may rank below fuzzy ones",
				f, cfg.Boosts.Phrase[f], cfg.Boosts.Fuzzy[f])
		}
	}
	return &QueryCompiler{
		boosts:  cfg.Boosts,
		preTag:  cfg.PreTag,
		postTag: cfg.PostTag,
	}, nil
}

// CompileSearch builds the OR of a fuzzy best-fields match over the
// analysed text fields and a phrase match over their exact-match
// sub-fields, highlighting every text field as a single fragment.
// Size has no upper cap here.
func (c *QueryCompiler) CompileSearch(text string, from, size int) (domain.SearchQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SearchQuery{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if from < 0 {
		return domain.SearchQuery{}, fmt.Errorf("%w: from must not be negative", domain.ErrInvalidQuery)
	}
	if size < 0 {
		return domain.SearchQuery{}, fmt.Errorf("%w: size must not be negative", domain.ErrInvalidQuery)
	}

	fields := domain.TextFields()
	fuzzy := domain.MatchClause{
		Type:      domain.MatchBestFields,
		Fuzziness: domain.FuzzinessAuto,
		Fields:    make([]domain.FieldBoost, len(fields)),
	}
	phrase := domain.MatchClause{
		Type:   domain.MatchPhrase,
		Fields: make([]domain.FieldBoost, len(fields)),
	}
	for i, f := range fields {
		fuzzy.Fields[i] = domain.FieldBoost{Field: f.String(), Boost: c.boosts.Fuzzy[f]}
		phrase.Fields[i] = domain.FieldBoost{Field: f.Keyword(), Boost: c.boosts.Phrase[f]}
	}

	return domain.SearchQuery{
		Text:   text,
		From:   from,
		Size:   size,
		Should: []domain.MatchClause{fuzzy, phrase},
		Highlight: domain.HighlightSpec{
			Fields:            fields,
			PreTag:            c.preTag,
			PostTag:           c.postTag,
			NumberOfFragments: 0,
		},
	}, nil
}

// CompileSuggest builds a fuzzy prefix-completion request on the field's
// completion sub-field, capped at domain.MaxSuggestions.
func (c *QueryCompiler) CompileSuggest(prefix, field string) (domain.SuggestQuery, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return domain.SuggestQuery{}, fmt.Errorf("%w: prefix is required", domain.ErrInvalidQuery)
	}
	f, err := domain.ParseTextField(field)
	if err != nil {
		return domain.SuggestQuery{}, err
	}
	return domain.SuggestQuery{
		Prefix:         prefix,
		Field:          f,
		Size:           domain.MaxSuggestions,
		SkipDuplicates: true,
		Fuzziness:      domain.FuzzinessAuto,
	}, nil
}

// CompileRange builds a consecutive-verse read. A zero count means
// DefaultReadCount.
func (c *QueryCompiler) CompileRange(startID int64, count int) (domain.RangeQuery, error) {
	if startID < 1 {
		return domain.RangeQuery{}, fmt.Errorf("%w: start id must be at least 1", domain.ErrInvalidQuery)
	}
	if count == 0 {
		count = DefaultReadCount
	}
	if count < 1 || count > MaxReadCount {
		return domain.RangeQuery{}, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidQuery, MaxReadCount)
	}
	return domain.RangeQuery{StartID: startID, Count: count}, nil
}
