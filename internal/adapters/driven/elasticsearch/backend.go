package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Verify interface compliance.
var _ driven.SearchBackend = (*Backend)(nil)

// Backend implements driven.SearchBackend over the Elasticsearch REST API.
// Every failure is reported as a *domain.BackendError carrying the
// response status and body.
type Backend struct {
	conn *Connection
}

// NewBackend creates a backend over an established connection.
func NewBackend(conn *Connection) *Backend {
	return &Backend{conn: conn}
}

// Info returns the cluster name and version.
func (b *Backend) Info(ctx context.Context) (domain.BackendInfo, error) {
	var resp infoResponse
	if _, err := b.perform(ctx, "info", esapi.InfoRequest{}, &resp); err != nil {
		return domain.BackendInfo{}, err
	}
	return domain.BackendInfo{ClusterName: resp.ClusterName, Version: resp.Version.Number}, nil
}

// ClusterHealth returns cluster health. A server-side wait that times out is
// reported as a snapshot with TimedOut set, not as an error.
func (b *Backend) ClusterHealth(ctx context.Context, req driven.HealthRequest) (domain.ClusterHealth, error) {
	esReq := esapi.ClusterHealthRequest{}
	if req.WaitForStatus != "" {
		esReq.WaitForStatus = string(req.WaitForStatus)
	}
	if req.Timeout > 0 {
		esReq.Timeout = req.Timeout
	}

	status, body, err := b.raw(ctx, "cluster.health", esReq)
	if err != nil {
		return domain.ClusterHealth{}, err
	}
	if status >= http.StatusBadRequest && status != http.StatusRequestTimeout {
		return domain.ClusterHealth{}, &domain.BackendError{Op: "cluster.health", Status: status, Detail: string(body)}
	}

	var health domain.ClusterHealth
	if err := json.Unmarshal(body, &health); err != nil {
		return domain.ClusterHealth{}, decodeError("cluster.health", status, err)
	}
	return health, nil
}

// Exists reports whether the index exists.
func (b *Backend) Exists(ctx context.Context, index string) (bool, error) {
	status, body, err := b.raw(ctx, "indices.exists", esapi.IndicesExistsRequest{Index: []string{index}})
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &domain.BackendError{Op: "indices.exists", Status: status, Detail: string(body)}
	}
}

// CreateIndex creates the index with the rendered mapping and settings.
func (b *Backend) CreateIndex(ctx context.Context, schema domain.IndexSchema) error {
	body, err := jsonBody(RenderMapping(schema))
	if err != nil {
		return err
	}
	var resp struct {
		Acknowledged       bool `json:"acknowledged"`
		ShardsAcknowledged bool `json:"shards_acknowledged"`
	}
	if _, err := b.perform(ctx, "indices.create", esapi.IndicesCreateRequest{Index: schema.Name, Body: body}, &resp); err != nil {
		return err
	}
	logger.Debug("Create %s acknowledged=%t shards_acknowledged=%t", schema.Name, resp.Acknowledged, resp.ShardsAcknowledged)
	return nil
}

// DeleteIndex removes the index. A missing index is not an error.
func (b *Backend) DeleteIndex(ctx context.Context, index string) error {
	status, body, err := b.raw(ctx, "indices.delete", esapi.IndicesDeleteRequest{Index: []string{index}})
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest && status != http.StatusNotFound {
		return &domain.BackendError{Op: "indices.delete", Status: status, Detail: string(body)}
	}
	return nil
}

// GetMapping returns the live mapping flattened to field path → type.
func (b *Backend) GetMapping(ctx context.Context, index string) (map[string]string, error) {
	var resp map[string]indexMapping
	if _, err := b.perform(ctx, "indices.get_mapping", esapi.IndicesGetMappingRequest{Index: []string{index}}, &resp); err != nil {
		return nil, err
	}
	m, ok := resp[index]
	if !ok {
		// Aliases resolve to the concrete index name.
		for _, v := range resp {
			m = v
			break
		}
	}
	return flattenMapping(m.Mappings.Properties), nil
}

// Bulk sends all operations as one NDJSON request.
func (b *Backend) Bulk(ctx context.Context, req driven.BulkRequest) (*driven.BulkResponse, error) {
	body, err := encodeBulk(req.Operations)
	if err != nil {
		return nil, err
	}
	esReq := esapi.BulkRequest{Index: req.Index, Body: body}
	if req.Refresh {
		esReq.Refresh = "true"
	}

	var resp bulkResponse
	if _, err := b.perform(ctx, "bulk", esReq, &resp); err != nil {
		return nil, err
	}
	return resp.toDriven(), nil
}

// Search runs a relevance query with highlighting.
func (b *Backend) Search(ctx context.Context, index string, q domain.SearchQuery) (*driven.SearchResponse, error) {
	resp, err := b.search(ctx, "search", index, RenderSearch(q))
	if err != nil {
		return nil, err
	}
	return resp.toDriven(), nil
}

// Suggest runs a completion suggester.
func (b *Backend) Suggest(ctx context.Context, index string, q domain.SuggestQuery) ([]driven.SuggestOption, error) {
	resp, err := b.search(ctx, "suggest", index, RenderSuggest(q))
	if err != nil {
		return nil, err
	}
	return resp.suggestOptions(), nil
}

// Range reads verses by id range, ascending.
func (b *Backend) Range(ctx context.Context, index string, q domain.RangeQuery) (*driven.SearchResponse, error) {
	resp, err := b.search(ctx, "range", index, RenderRange(q))
	if err != nil {
		return nil, err
	}
	return resp.toDriven(), nil
}

// Count returns the number of documents in the index.
func (b *Backend) Count(ctx context.Context, index string) (int64, error) {
	var resp countResponse
	if _, err := b.perform(ctx, "count", esapi.CountRequest{Index: []string{index}}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Close shuts the connection down.
func (b *Backend) Close() error {
	b.conn.Shutdown()
	return nil
}

func (b *Backend) search(ctx context.Context, op, index string, query map[string]any) (*searchResponse, error) {
	body, err := jsonBody(query)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if _, err := b.perform(ctx, op, esapi.SearchRequest{Index: []string{index}, Body: body}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// perform executes req, fails on error statuses and decodes the body into out.
func (b *Backend) perform(ctx context.Context, op string, req esapi.Request, out any) (int, error) {
	status, body, err := b.raw(ctx, op, req)
	if err != nil {
		return status, err
	}
	if status >= http.StatusBadRequest {
		return status, &domain.BackendError{Op: op, Status: status, Detail: string(body)}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return status, decodeError(op, status, err)
		}
	}
	return status, nil
}

// raw executes req and returns the status and body without judging either.
func (b *Backend) raw(ctx context.Context, op string, req esapi.Request) (int, []byte, error) {
	res, err := req.Do(ctx, b.conn.Client())
	if err != nil {
		return 0, nil, &domain.BackendError{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, &domain.BackendError{Op: op, Status: res.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	logger.Debug("Elasticsearch %s: status %d (%d bytes)", op, res.StatusCode, len(body))
	return res.StatusCode, body, nil
}

func jsonBody(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

func decodeError(op string, status int, err error) error {
	return &domain.BackendError{Op: op, Status: status, Detail: "decode response: " + err.Error()}
}
