package httpapi

import (
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

type searchHit struct {
	domain.Verse
	Score     float64           `json:"score"`
	Highlight map[string]string `json:"highlight,omitempty"`
}

type searchResponse struct {
	Total  int64       `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []searchHit `json:"hits"`
}

type suggestResponse struct {
	Field       string   `json:"field"`
	Suggestions []string `json:"suggestions"`
}

type uploadResponse struct {
	Message string              `json:"message"`
	Count   int                 `json:"verses_count"`
	Outcome *domain.BulkOutcome `json:"outcome,omitempty"`
}

type healthResponse struct {
	Status string               `json:"status"`
	Health *domain.HealthReport `json:"health"`
}

type historyEntry struct {
	BatchID    string    `json:"batch_id"`
	Index      string    `json:"index"`
	Mode       string    `json:"mode"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	FailedIDs  []int64   `json:"failed_ids,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type historyResponse struct {
	Runs []historyEntry `json:"runs"`
}

func toHits(hits []domain.Hit) []searchHit {
	out := make([]searchHit, len(hits))
	for i, h := range hits {
		out[i] = searchHit{Verse: h.Verse, Score: h.Score}
		if len(h.Highlights) > 0 {
			out[i].Highlight = make(map[string]string, len(h.Highlights))
			for f, frag := range h.Highlights {
				out[i].Highlight[f.String()] = frag
			}
		}
	}
	return out
}

func toHistoryEntry(run domain.IngestionRun) historyEntry {
	return historyEntry{
		BatchID:    run.BatchID,
		Index:      run.Index,
		Mode:       string(run.Mode),
		Total:      run.Total,
		Succeeded:  run.Succeeded,
		FailedIDs:  run.FailedIDs,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}
