package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockBackend implements driven.SearchBackend for testing.
type mockBackend struct {
	mu    sync.Mutex
	calls []string

	// failProbes makes the next N Info calls fail.
	failProbes int
	infoErr    error
	health     domain.ClusterHealth
	healthErr  error

	indexes    map[string]bool
	existsErr  error
	createErr  error
	deleteErr  error
	mapping    map[string]string
	mappingErr error

	bulkResp *driven.BulkResponse
	bulkErr  error
	bulkReqs []driven.BulkRequest

	searchResp  *driven.SearchResponse
	searchErr   error
	lastSearch  domain.SearchQuery
	suggestOpts []driven.SuggestOption
	lastSuggest domain.SuggestQuery
	rangeResp   *driven.SearchResponse
	lastRange   domain.RangeQuery
	docCount    int64
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		health:  domain.ClusterHealth{ClusterName: "test", Status: domain.HealthGreen, NumberOfNodes: 1},
		indexes: make(map[string]bool),
	}
}

func (m *mockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// count returns how many times op was called.
func (m *mockBackend) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *mockBackend) Info(_ context.Context) (domain.BackendInfo, error) {
	m.record("info")
	if m.failProbes > 0 {
		m.failProbes--
		return domain.BackendInfo{}, errors.New("connection refused")
	}
	if m.infoErr != nil {
		return domain.BackendInfo{}, m.infoErr
	}
	return domain.BackendInfo{ClusterName: "test", Version: "8.17.0"}, nil
}

func (m *mockBackend) ClusterHealth(_ context.Context, _ driven.HealthRequest) (domain.ClusterHealth, error) {
	m.record("health")
	if m.healthErr != nil {
		return domain.ClusterHealth{}, m.healthErr
	}
	return m.health, nil
}

func (m *mockBackend) Exists(_ context.Context, index string) (bool, error) {
	m.record("exists")
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.indexes[index], nil
}

func (m *mockBackend) CreateIndex(_ context.Context, schema domain.IndexSchema) error {
	m.record("create")
	if m.createErr != nil {
		return m.createErr
	}
	m.indexes[schema.Name] = true
	return nil
}

func (m *mockBackend) DeleteIndex(_ context.Context, index string) error {
	m.record("delete")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.indexes, index)
	return nil
}

func (m *mockBackend) GetMapping(_ context.Context, _ string) (map[string]string, error) {
	m.record("mapping")
	return m.mapping, m.mappingErr
}

func (m *mockBackend) Bulk(_ context.Context, req driven.BulkRequest) (*driven.BulkResponse, error) {
	m.record("bulk")
	m.bulkReqs = append(m.bulkReqs, req)
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	if m.bulkResp != nil {
		return m.bulkResp, nil
	}
	items := make([]driven.BulkItem, len(req.Operations))
	for i, op := range req.Operations {
		items[i] = driven.BulkItem{DocumentID: op.DocumentID, Status: 201}
	}
	return &driven.BulkResponse{Took: 3 * time.Millisecond, Items: items}, nil
}

func (m *mockBackend) Search(_ context.Context, _ string, q domain.SearchQuery) (*driven.SearchResponse, error) {
	m.record("search")
	m.lastSearch = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResp == nil {
		return &driven.SearchResponse{}, nil
	}
	return m.searchResp, nil
}

func (m *mockBackend) Suggest(_ context.Context, _ string, q domain.SuggestQuery) ([]driven.SuggestOption, error) {
	m.record("suggest")
	m.lastSuggest = q
	return m.suggestOpts, nil
}

func (m *mockBackend) Range(_ context.Context, _ string, q domain.RangeQuery) (*driven.SearchResponse, error) {
	m.record("range")
	m.lastRange = q
	if m.rangeResp == nil {
		return &driven.SearchResponse{}, nil
	}
	return m.rangeResp, nil
}

func (m *mockBackend) Count(_ context.Context, _ string) (int64, error) {
	m.record("count")
	return m.docCount, nil
}

func (m *mockBackend) Close() error {
	return nil
}

// recordingSleeper captures requested delays without sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

// mockHistory implements driven.IngestionHistory for testing.
type mockHistory struct {
	runs      []domain.IngestionRun
	recordErr error
}

func (h *mockHistory) Record(_ context.Context, run domain.IngestionRun) error {
	if h.recordErr != nil {
		return h.recordErr
	}
	h.runs = append(h.runs, run)
	return nil
}

func (h *mockHistory) Get(_ context.Context, batchID string) (*domain.IngestionRun, error) {
	for i := range h.runs {
		if h.runs[i].BatchID == batchID {
			return &h.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (h *mockHistory) List(_ context.Context, limit int) ([]domain.IngestionRun, error) {
	if limit > len(h.runs) {
		limit = len(h.runs)
	}
	return h.runs[:limit], nil
}

// fastBackoff keeps tests from sleeping.
func fastBackoff(attempts int) Backoff {
	return Backoff{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		Multiplier:    2,
		HealthTimeout: time.Second,
	}
}

func newTestManager(backend *mockBackend, attempts int) (*IndexManager, *recordingSleeper) {
	prober := NewReadinessProber(backend)
	sleeper := &recordingSleeper{}
	prober.SetSleeper(sleeper.sleep)
	return NewIndexManager(backend, prober, fastBackoff(attempts), domain.VerseSchema("verses", 1, 0)), sleeper
}

func sampleVerses(ids ...int64) []domain.Verse {
	verses := make([]domain.Verse, len(ids))
	for i, id := range ids {
		verses[i] = domain.Verse{
			ID:          id,
			SuraNo:      1,
			VerseNo:     int(id),
			TextArabic:  "بسم الله",
			TextEnglish: "In the name of God",
			TextBangla:  "আল্লাহর নামে",
		}
	}
	return verses
}
