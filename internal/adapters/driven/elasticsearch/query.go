package elasticsearch

import (
	"strconv"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// suggestName is the key of the completion suggester in requests and responses.
const suggestName = "verse_suggest"

// RenderSearch renders a compiled search as a request body.
func RenderSearch(q domain.SearchQuery) map[string]any {
	should := make([]any, 0, len(q.Should))
	for _, clause := range q.Should {
		mm := map[string]any{
			"query":  q.Text,
			"type":   string(clause.Type),
			"fields": fieldList(clause.Fields),
		}
		if clause.Fuzziness != "" {
			mm["fuzziness"] = clause.Fuzziness
		}
		should = append(should, map[string]any{"multi_match": mm})
	}

	hlFields := make(map[string]any, len(q.Highlight.Fields))
	for _, f := range q.Highlight.Fields {
		hlFields[f.String()] = map[string]any{"number_of_fragments": q.Highlight.NumberOfFragments}
	}

	return map[string]any{
		"from":             q.From,
		"size":             q.Size,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"highlight": map[string]any{
			"pre_tags":  []string{q.Highlight.PreTag},
			"post_tags": []string{q.Highlight.PostTag},
			"fields":    hlFields,
		},
	}
}

// RenderSuggest renders a completion request. Stored source is restricted
// to the suggested field.
func RenderSuggest(q domain.SuggestQuery) map[string]any {
	completion := map[string]any{
		"field":           q.CompletionField(),
		"size":            q.Size,
		"skip_duplicates": q.SkipDuplicates,
	}
	if q.Fuzziness != "" {
		completion["fuzzy"] = map[string]any{"fuzziness": q.Fuzziness}
	}
	return map[string]any{
		"size":    0,
		"_source": []string{q.Field.String()},
		"suggest": map[string]any{
			suggestName: map[string]any{
				"prefix":     q.Prefix,
				"completion": completion,
			},
		},
	}
}

// RenderRange renders a consecutive read ordered by id.
func RenderRange(q domain.RangeQuery) map[string]any {
	return map[string]any{
		"size": q.Count,
		"query": map[string]any{
			"range": map[string]any{
				"id": map[string]any{
					"gte": q.StartID,
					"lt":  q.EndID(),
				},
			},
		},
		"sort": []any{map[string]any{"id": "asc"}},
	}
}

func fieldList(fields []domain.FieldBoost) []string {
	out := make([]string, len(fields))
	for i, fb := range fields {
		if fb.Boost == 0 || fb.Boost == 1 {
			out[i] = fb.Field
			continue
		}
		out[i] = fb.Field + "^" + strconv.FormatFloat(fb.Boost, 'f', -1, 64)
	}
	return out
}
