package elasticsearch

import (
	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// analysis is the custom analysis chain shared by every verse index.
func analysis() map[string]any {
	return map[string]any{
		"filter": map[string]any{
			"arabic_stemmer": map[string]any{
				"type":     "stemmer",
				"language": "arabic",
			},
			"bengali_stop": map[string]any{
				"type":      "stop",
				"stopwords": "_bengali_",
			},
			"bengali_stemmer": map[string]any{
				"type":     "stemmer",
				"language": "bengali",
			},
		},
		"analyzer": map[string]any{
			string(domain.AnalyzerArabic): map[string]any{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "decimal_digit", "arabic_normalization", "arabic_stemmer"},
			},
			string(domain.AnalyzerBangla): map[string]any{
				"type":      "custom",
				"tokenizer": "standard",
				"filter": []string{
					"lowercase", "indic_normalization", "bengali_normalization",
					"bengali_stop", "bengali_stemmer",
				},
			},
			string(domain.AnalyzerCompletion): map[string]any{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "word_delimiter"},
			},
		},
	}
}

// RenderMapping renders the index creation body for a schema.
func RenderMapping(schema domain.IndexSchema) map[string]any {
	properties := make(map[string]any, len(schema.NumericFields)+len(schema.TextFields))
	for _, nf := range schema.NumericFields {
		properties[nf.Name] = map[string]any{"type": nf.Type}
	}

	for _, tf := range schema.TextFields {
		prop := map[string]any{
			"type":     domain.TypeText,
			"analyzer": string(tf.Analyzer),
		}
		fields := map[string]any{}
		if tf.Completion {
			fields["completion"] = map[string]any{
				"type":     domain.TypeCompletion,
				"analyzer": string(domain.AnalyzerCompletion),
			}
		}
		if tf.KeywordIgnoreAbove > 0 {
			fields["keyword"] = map[string]any{
				"type":         domain.TypeKeyword,
				"ignore_above": tf.KeywordIgnoreAbove,
			}
		}
		if len(fields) > 0 {
			prop["fields"] = fields
		}
		properties[string(tf.Field)] = prop
	}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   schema.Shards,
			"number_of_replicas": schema.Replicas,
			"analysis":           analysis(),
		},
		"mappings": map[string]any{
			"properties": properties,
		},
	}
}

// mappingProperty is one node of a get-mapping response.
type mappingProperty struct {
	Type       string                     `json:"type"`
	Properties map[string]mappingProperty `json:"properties"`
	Fields     map[string]mappingProperty `json:"fields"`
}

// indexMapping is the per-index body of a get-mapping response.
type indexMapping struct {
	Mappings struct {
		Properties map[string]mappingProperty `json:"properties"`
	} `json:"mappings"`
}

// flattenMapping converts nested properties into field path → type.
func flattenMapping(props map[string]mappingProperty) map[string]string {
	out := make(map[string]string)
	var walk func(prefix string, props map[string]mappingProperty)
	walk = func(prefix string, props map[string]mappingProperty) {
		for name, p := range props {
			path := prefix + name
			if p.Type != "" {
				out[path] = p.Type
			}
			for sub, sp := range p.Fields {
				out[path+"."+sub] = sp.Type
			}
			if len(p.Properties) > 0 {
				walk(path+".", p.Properties)
			}
		}
	}
	walk("", props)
	return out
}
