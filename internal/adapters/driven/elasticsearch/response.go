package elasticsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// totalHits accepts both the object form {"value": n} and a bare number.
type totalHits int64

func (t *totalHits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = totalHits(obj.Value)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("hits.total: %w", err)
	}
	*t = totalHits(n)
	return nil
}

type infoResponse struct {
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type searchHit struct {
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    json.RawMessage     `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

type suggestEntry struct {
	Options []struct {
		Text   string          `json:"text"`
		Source json.RawMessage `json:"_source"`
	} `json:"options"`
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total totalHits   `json:"total"`
		Hits  []searchHit `json:"hits"`
	} `json:"hits"`
	Suggest map[string][]suggestEntry `json:"suggest"`
}

func (r *searchResponse) toDriven() *driven.SearchResponse {
	out := &driven.SearchResponse{
		Took:  time.Duration(r.Took) * time.Millisecond,
		Total: int64(r.Hits.Total),
		Hits:  make([]driven.RawHit, len(r.Hits.Hits)),
	}
	for i, h := range r.Hits.Hits {
		var score float64
		if h.Score != nil {
			score = *h.Score
		}
		out.Hits[i] = driven.RawHit{
			ID:        h.ID,
			Score:     score,
			Source:    h.Source,
			Highlight: h.Highlight,
		}
	}
	return out
}

func (r *searchResponse) suggestOptions() []driven.SuggestOption {
	var out []driven.SuggestOption
	for _, entry := range r.Suggest[suggestName] {
		for _, opt := range entry.Options {
			out = append(out, driven.SuggestOption{Text: opt.Text, Source: opt.Source})
		}
	}
	return out
}

type bulkItem struct {
	ID     string            `json:"_id"`
	Status int               `json:"status"`
	Error  *domain.ItemError `json:"error"`
}

type bulkResponse struct {
	Took   int64                 `json:"took"`
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

func (r *bulkResponse) toDriven() *driven.BulkResponse {
	out := &driven.BulkResponse{
		Errors: r.Errors,
		Took:   time.Duration(r.Took) * time.Millisecond,
		Items:  make([]driven.BulkItem, 0, len(r.Items)),
	}
	// Each item holds exactly one key: the action that was applied.
	for _, wrapped := range r.Items {
		for _, item := range wrapped {
			out.Items = append(out.Items, driven.BulkItem{
				DocumentID: item.ID,
				Status:     item.Status,
				Error:      item.Error,
			})
			break
		}
	}
	return out
}

// encodeBulk renders operations as newline-delimited JSON.
func encodeBulk(ops []domain.BulkOperation) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, op := range ops {
		action := map[string]any{
			string(op.Action): map[string]string{"_id": op.DocumentID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode bulk action for %s: %w", op.DocumentID, err)
		}
		if err := enc.Encode(op.Document); err != nil {
			return nil, fmt.Errorf("encode document %s: %w", op.DocumentID, err)
		}
	}
	return &buf, nil
}
