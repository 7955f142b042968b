package domain

import "time"

// BulkAction is the write directive applied to a document in a bulk request.
type BulkAction string

// BulkActionIndex creates or replaces the document with the given id.
const BulkActionIndex BulkAction = "index"

// BulkOperation pairs a directive with its document payload.
// A bulk request is the ordered sequence of these pairs.
type BulkOperation struct {
	Action     BulkAction
	DocumentID string
	Document   Verse
}

// ItemError is the error a backend reports for a single bulk item.
type ItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// FailedDocument captures a record the backend refused during a bulk write.
type FailedDocument struct {
	Record Verse     `json:"record"`
	Status int       `json:"status"`
	Error  ItemError `json:"error"`
}

// BulkOutcome is the result of an ingestion attempt.
// A non-empty Failures list marks the outcome as failed even though
// successful documents remain persisted.
type BulkOutcome struct {
	BatchID   string           `json:"batch_id"`
	Index     string           `json:"index"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failures  []FailedDocument `json:"failures,omitempty"`
	Took      time.Duration    `json:"took"`
}

// Failed reports whether any document failed.
func (o BulkOutcome) Failed() bool {
	return len(o.Failures) > 0
}

// FailedIDs returns the ids of failed records in failure order.
func (o BulkOutcome) FailedIDs() []int64 {
	ids := make([]int64, len(o.Failures))
	for i, f := range o.Failures {
		ids[i] = f.Record.ID
	}
	return ids
}

// IngestMode records how an ingestion treated existing documents.
type IngestMode string

const (
	// IngestModeUpsert writes into the existing index, overwriting matching ids.
	IngestModeUpsert IngestMode = "upsert"

	// IngestModeRebuild destroys and recreates the index before writing.
	IngestModeRebuild IngestMode = "rebuild"
)

// IngestionRun is the audit record of one ingestion.
type IngestionRun struct {
	BatchID    string     `json:"batch_id"`
	Index      string     `json:"index"`
	Mode       IngestMode `json:"mode"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	FailedIDs  []int64    `json:"failed_ids,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
