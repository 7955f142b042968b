package bleve

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/ar"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
	"github.com/blevesearch/bleve/v2/search/highlight"
	htmlformat "github.com/blevesearch/bleve/v2/search/highlight/format/html"
	simplefrag "github.com/blevesearch/bleve/v2/search/highlight/fragmenter/simple"
	simplehl "github.com/blevesearch/bleve/v2/search/highlight/highlighter/simple"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

const (
	// completionAnalyzer indexes a whole field value as one lowercased term.
	completionAnalyzer = "verse_completion"

	// wholeFieldHighlighter returns each highlighted field as one fragment.
	wholeFieldHighlighter = "verse_whole_field"

	// sourceField stores the verse JSON for hit projection.
	sourceField = "source_json"

	defaultPreTag  = "<mark>"
	defaultPostTag = "</mark>"

	// wholeFieldSize exceeds any verse text so the fragmenter never splits.
	wholeFieldSize = 1 << 20
)

func init() {
	registry.RegisterHighlighter(wholeFieldHighlighter,
		func(map[string]interface{}, *registry.Cache) (highlight.Highlighter, error) {
			return simplehl.NewHighlighter(
				simplefrag.NewFragmenter(wholeFieldSize),
				htmlformat.NewFragmentFormatter(defaultPreTag, defaultPostTag),
				simplehl.DefaultSeparator,
			), nil
		})
}

// analyzerFor maps schema analyzers to bleve analyzers. Bleve ships no
// Bengali analysis, so Bangla falls back to the unicode standard analyzer.
func analyzerFor(a domain.Analyzer) (string, error) {
	switch a {
	case domain.AnalyzerArabic:
		return ar.AnalyzerName, nil
	case domain.AnalyzerEnglish:
		return en.AnalyzerName, nil
	case domain.AnalyzerBangla:
		return standard.Name, nil
	default:
		return "", fmt.Errorf("%w: unsupported analyzer %q", domain.ErrInvalidInput, a)
	}
}

// subField converts a dotted sub-field path into its flat bleve field name.
func subField(path string) string {
	return strings.ReplaceAll(path, ".", "_")
}

// buildIndexMapping creates the bleve mapping for a verse schema.
func buildIndexMapping(schema domain.IndexSchema) (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	err := indexMapping.AddCustomAnalyzer(completionAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add completion analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	for _, nf := range schema.NumericFields {
		numeric := bleve.NewNumericFieldMapping()
		numeric.Store = true
		numeric.DocValues = true
		docMapping.AddFieldMappingsAt(nf.Name, numeric)
	}

	for _, tf := range schema.TextFields {
		analyzer, err := analyzerFor(tf.Analyzer)
		if err != nil {
			return nil, err
		}

		text := bleve.NewTextFieldMapping()
		text.Analyzer = analyzer
		text.Store = true
		text.IncludeTermVectors = true // For highlighting
		docMapping.AddFieldMappingsAt(tf.Field.String(), text)

		if tf.KeywordIgnoreAbove > 0 {
			kw := bleve.NewTextFieldMapping()
			kw.Analyzer = keyword.Name
			kw.IncludeInAll = false
			docMapping.AddFieldMappingsAt(subField(tf.Field.Keyword()), kw)
		}

		if tf.Completion {
			comp := bleve.NewTextFieldMapping()
			comp.Analyzer = completionAnalyzer
			comp.IncludeInAll = false
			docMapping.AddFieldMappingsAt(subField(tf.Field.Completion()), comp)
		}
	}

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	docMapping.AddFieldMappingsAt(sourceField, source)

	indexMapping.DefaultMapping = docMapping
	return indexMapping, nil
}
