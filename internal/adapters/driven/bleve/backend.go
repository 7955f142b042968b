// Package bleve provides an embedded search backend over a local bleve index.
// It serves the same port as the Elasticsearch adapter for offline use.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SearchBackend = (*Backend)(nil)

// schemaKey is the internal-storage key holding the index schema.
var schemaKey = []byte("versesearch.schema")

// fuzzyEdits approximates AUTO fuzziness with a single edit.
const fuzzyEdits = 1

// Backend implements driven.SearchBackend over bleve indexes.
// With an empty data directory indexes live in memory only.
type Backend struct {
	mu      sync.RWMutex
	dataDir string
	indexes map[string]bleve.Index
	closed  bool
}

// NewBackend creates a backend. Existing on-disk indexes are opened lazily.
func NewBackend(dataDir string) *Backend {
	return &Backend{
		dataDir: dataDir,
		indexes: make(map[string]bleve.Index),
	}
}

// Info reports the embedded backend identity.
func (b *Backend) Info(_ context.Context) (domain.BackendInfo, error) {
	if err := b.checkOpen(); err != nil {
		return domain.BackendInfo{}, err
	}
	return domain.BackendInfo{ClusterName: "embedded", Version: "bleve-v2"}, nil
}

// ClusterHealth is always green for a single in-process node.
func (b *Backend) ClusterHealth(_ context.Context, _ driven.HealthRequest) (domain.ClusterHealth, error) {
	if err := b.checkOpen(); err != nil {
		return domain.ClusterHealth{}, err
	}
	b.mu.RLock()
	n := len(b.indexes)
	b.mu.RUnlock()
	return domain.ClusterHealth{
		ClusterName:         "embedded",
		Status:              domain.HealthGreen,
		NumberOfNodes:       1,
		ActivePrimaryShards: n,
		ActiveShards:        n,
	}, nil
}

// Exists reports whether the index is open or present on disk.
func (b *Backend) Exists(_ context.Context, index string) (bool, error) {
	_, err := b.open(index)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateIndex creates a new index. Creating an existing index fails.
func (b *Backend) CreateIndex(_ context.Context, schema domain.IndexSchema) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if _, err := b.open(schema.Name); err == nil {
		return &domain.BackendError{
			Op:     "indices.create",
			Status: 400,
			Detail: fmt.Sprintf("resource_already_exists_exception: index [%s] already exists", schema.Name),
		}
	}

	m, err := buildIndexMapping(schema)
	if err != nil {
		return &domain.BackendError{Op: "indices.create", Status: 400, Detail: err.Error()}
	}

	var idx bleve.Index
	if b.dataDir == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		if err := os.MkdirAll(b.dataDir, 0o700); err != nil {
			return &domain.BackendError{Op: "indices.create", Err: err}
		}
		idx, err = bleve.New(b.path(schema.Name), m)
	}
	if err != nil {
		return &domain.BackendError{Op: "indices.create", Err: err}
	}

	encoded, err := json.Marshal(schema)
	if err != nil {
		_ = idx.Close()
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := idx.SetInternal(schemaKey, encoded); err != nil {
		_ = idx.Close()
		return &domain.BackendError{Op: "indices.create", Err: err}
	}

	b.mu.Lock()
	b.indexes[schema.Name] = idx
	b.mu.Unlock()
	return nil
}

// DeleteIndex closes and removes the index. A missing index is not an error.
func (b *Backend) DeleteIndex(_ context.Context, index string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.mu.Lock()
	idx, ok := b.indexes[index]
	delete(b.indexes, index)
	b.mu.Unlock()

	if ok {
		if err := idx.Close(); err != nil {
			return &domain.BackendError{Op: "indices.delete", Err: err}
		}
	}
	if b.dataDir != "" {
		if err := os.RemoveAll(b.path(index)); err != nil {
			return &domain.BackendError{Op: "indices.delete", Err: err}
		}
	}
	return nil
}

// GetMapping returns the field types of the schema the index was created with.
func (b *Backend) GetMapping(_ context.Context, index string) (map[string]string, error) {
	idx, err := b.require("indices.get_mapping", index)
	if err != nil {
		return nil, err
	}
	raw, err := idx.GetInternal(schemaKey)
	if err != nil {
		return nil, &domain.BackendError{Op: "indices.get_mapping", Err: err}
	}
	if raw == nil {
		return map[string]string{}, nil
	}
	var schema domain.IndexSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, &domain.BackendError{Op: "indices.get_mapping", Status: 500, Detail: err.Error()}
	}
	return schema.FieldTypes(), nil
}

// Bulk validates each document independently and commits the valid ones in
// one batch. Invalid documents are reported per item, like a remote cluster.
func (b *Backend) Bulk(_ context.Context, req driven.BulkRequest) (*driven.BulkResponse, error) {
	started := time.Now()
	idx, err := b.require("bulk", req.Index)
	if err != nil {
		return nil, err
	}

	resp := &driven.BulkResponse{Items: make([]driven.BulkItem, len(req.Operations))}
	batch := idx.NewBatch()
	staged := make(map[string]bool, len(req.Operations))
	for i, op := range req.Operations {
		item := driven.BulkItem{DocumentID: op.DocumentID, Status: 201}
		if err := op.Document.Validate(); err != nil {
			item.Status = 400
			item.Error = &domain.ItemError{Type: "mapper_parsing_exception", Reason: err.Error()}
			resp.Errors = true
			resp.Items[i] = item
			continue
		}
		if staged[op.DocumentID] {
			item.Status = 200
		} else {
			existing, err := idx.Document(op.DocumentID)
			if err != nil {
				return nil, &domain.BackendError{Op: "bulk", Err: err}
			}
			if existing != nil {
				item.Status = 200
			}
		}
		doc, err := document(op.Document)
		if err != nil {
			return nil, &domain.BackendError{Op: "bulk", Err: err}
		}
		if err := batch.Index(op.DocumentID, doc); err != nil {
			item.Status = 400
			item.Error = &domain.ItemError{Type: "document_parsing_exception", Reason: err.Error()}
			resp.Errors = true
		} else {
			staged[op.DocumentID] = true
		}
		resp.Items[i] = item
	}

	if err := idx.Batch(batch); err != nil {
		return nil, &domain.BackendError{Op: "bulk", Err: err}
	}
	resp.Took = time.Since(started)
	return resp, nil
}

// Search runs the compiled clauses as a disjunction with whole-field highlighting.
func (b *Backend) Search(ctx context.Context, index string, q domain.SearchQuery) (*driven.SearchResponse, error) {
	idx, err := b.require("search", index)
	if err != nil {
		return nil, err
	}

	disjuncts := make([]query.Query, 0, len(q.Should)*3)
	for _, clause := range q.Should {
		for _, fb := range clause.Fields {
			disjuncts = append(disjuncts, clauseQuery(clause, fb, q.Text))
		}
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(disjuncts...), q.Size, q.From, false)
	req.Fields = []string{sourceField}
	if len(q.Highlight.Fields) > 0 {
		req.Highlight = bleve.NewHighlightWithStyle(wholeFieldHighlighter)
		for _, f := range q.Highlight.Fields {
			req.Highlight.AddField(f.String())
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &domain.BackendError{Op: "search", Err: err}
	}
	return convertResult(res, q.Highlight), nil
}

// Suggest matches the lowercased prefix against whole-value completion terms
// and collapses duplicate texts, paging until Size distinct texts are found.
func (b *Backend) Suggest(ctx context.Context, index string, q domain.SuggestQuery) ([]driven.SuggestOption, error) {
	idx, err := b.require("suggest", index)
	if err != nil {
		return nil, err
	}

	prefix := bleve.NewPrefixQuery(strings.ToLower(q.Prefix))
	prefix.SetField(subField(q.CompletionField()))

	seen := make(map[string]bool)
	var out []driven.SuggestOption
	page := q.Size * 4
	for from := 0; len(out) < q.Size; from += page {
		req := bleve.NewSearchRequestOptions(prefix, page, from, false)
		req.Fields = []string{sourceField}
		req.SortBy([]string{"id"})

		res, err := idx.SearchInContext(ctx, req)
		if err != nil {
			return nil, &domain.BackendError{Op: "suggest", Err: err}
		}

		for _, hit := range res.Hits {
			var v domain.Verse
			src, _ := hit.Fields[sourceField].(string)
			if err := json.Unmarshal([]byte(src), &v); err != nil {
				continue
			}
			text := v.Text(q.Field)
			if q.SkipDuplicates && seen[text] {
				continue
			}
			seen[text] = true
			projected, _ := json.Marshal(map[string]string{q.Field.String(): text})
			out = append(out, driven.SuggestOption{Text: text, Source: projected})
			if len(out) == q.Size {
				break
			}
		}
		if len(res.Hits) < page {
			break
		}
	}
	return out, nil
}

// Range returns verses with ids in [StartID, EndID) sorted by id.
func (b *Backend) Range(ctx context.Context, index string, q domain.RangeQuery) (*driven.SearchResponse, error) {
	idx, err := b.require("range", index)
	if err != nil {
		return nil, err
	}

	lo, hi := float64(q.StartID), float64(q.EndID())
	inclusive, exclusive := true, false
	rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &exclusive)
	rq.SetField("id")

	req := bleve.NewSearchRequestOptions(rq, q.Count, 0, false)
	req.Fields = []string{sourceField}
	req.SortBy([]string{"id"})

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &domain.BackendError{Op: "range", Err: err}
	}
	return convertResult(res, domain.HighlightSpec{}), nil
}

// Count returns the number of documents in the index.
func (b *Backend) Count(_ context.Context, index string) (int64, error) {
	idx, err := b.require("count", index)
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	if err != nil {
		return 0, &domain.BackendError{Op: "count", Err: err}
	}
	return int64(n), nil
}

// Close closes every open index. Later calls fail.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for name, idx := range b.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	b.indexes = nil
	return errors.Join(errs...)
}

func (b *Backend) path(index string) string {
	return filepath.Join(b.dataDir, index+".bleve")
}

func (b *Backend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return &domain.BackendError{Op: "embedded", Err: errors.New("backend closed")}
	}
	return nil
}

// open returns the named index, opening it from disk if needed.
// Returns domain.ErrNotFound if it does not exist.
func (b *Backend) open(index string) (bleve.Index, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	idx, ok := b.indexes[index]
	b.mu.RUnlock()
	if ok {
		return idx, nil
	}
	if b.dataDir == "" {
		return nil, domain.ErrNotFound
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if idx, ok := b.indexes[index]; ok {
		return idx, nil
	}
	if _, err := os.Stat(b.path(index)); os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	idx, err := bleve.Open(b.path(index))
	if err != nil {
		return nil, &domain.BackendError{Op: "open", Err: err}
	}
	b.indexes[index] = idx
	return idx, nil
}

// require returns the index or a 404 backend error.
func (b *Backend) require(op, index string) (bleve.Index, error) {
	idx, err := b.open(index)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.BackendError{
			Op:     op,
			Status: 404,
			Detail: fmt.Sprintf("index_not_found_exception: no such index [%s]", index),
		}
	}
	return idx, err
}

// document flattens a verse into the indexed field layout.
func document(v domain.Verse) (map[string]interface{}, error) {
	src, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{
		"id":        float64(v.ID),
		"sura_no":   float64(v.SuraNo),
		"verse_no":  float64(v.VerseNo),
		sourceField: string(src),
	}
	for _, f := range domain.TextFields() {
		text := v.Text(f)
		doc[f.String()] = text
		doc[subField(f.Completion())] = text
		if utf8.RuneCountInString(text) <= domain.KeywordIgnoreAbove {
			doc[subField(f.Keyword())] = text
		}
	}
	return doc, nil
}

// clauseQuery builds the per-field query for one clause member.
func clauseQuery(clause domain.MatchClause, fb domain.FieldBoost, text string) query.Query {
	if clause.Type == domain.MatchPhrase {
		tq := bleve.NewTermQuery(text)
		tq.SetField(subField(fb.Field))
		tq.SetBoost(fb.Boost)
		return tq
	}
	mq := bleve.NewMatchQuery(text)
	mq.SetField(fb.Field)
	mq.SetBoost(fb.Boost)
	if clause.Fuzziness != "" {
		mq.SetFuzziness(fuzzyEdits)
	}
	return mq
}

func convertResult(res *bleve.SearchResult, hl domain.HighlightSpec) *driven.SearchResponse {
	out := &driven.SearchResponse{
		Took:  res.Took,
		Total: int64(res.Total),
		Hits:  make([]driven.RawHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		src, _ := hit.Fields[sourceField].(string)
		raw := driven.RawHit{
			ID:     hit.ID,
			Score:  hit.Score,
			Source: json.RawMessage(src),
		}
		if len(hit.Fragments) > 0 {
			raw.Highlight = make(map[string][]string, len(hit.Fragments))
			for field, frags := range hit.Fragments {
				raw.Highlight[field] = retag(frags, hl.PreTag, hl.PostTag)
			}
		}
		out.Hits = append(out.Hits, raw)
	}
	return out
}

// retag swaps the default markers for the requested ones.
func retag(frags []string, pre, post string) []string {
	if (pre == "" || pre == defaultPreTag) && (post == "" || post == defaultPostTag) {
		return frags
	}
	r := strings.NewReplacer(defaultPreTag, pre, defaultPostTag, post)
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = r.Replace(f)
	}
	return out
}
