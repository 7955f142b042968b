package elasticsearch

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCluster is a minimal Elasticsearch stand-in.
type fakeCluster struct {
	mu       sync.Mutex
	indexes  map[string]bool
	requests []string
	bodies   map[string]string

	// responses overrides the reply for "METHOD /path".
	responses map[string]fakeReply
}

type fakeReply struct {
	status int
	body   string
}

func newFakeCluster(t *testing.T) (*fakeCluster, *Backend) {
	t.Helper()
	fc := &fakeCluster{
		indexes:   make(map[string]bool),
		bodies:    make(map[string]string),
		responses: make(map[string]fakeReply),
	}
	srv := httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Addresses = []string{srv.URL}
	cfg.MaxRetries = 0
	conn, err := NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(conn.Shutdown)
	return fc, NewBackend(conn)
}

func (fc *fakeCluster) reply(key string, status int, body string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.responses[key] = fakeReply{status: status, body: body}
}

func (fc *fakeCluster) body(key string) string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.bodies[key]
}

func (fc *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	var reader io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer gz.Close()
		reader = gz
	}
	data, _ := io.ReadAll(reader)

	key := r.Method + " " + r.URL.Path
	fc.mu.Lock()
	fc.requests = append(fc.requests, key+"?"+r.URL.RawQuery)
	fc.bodies[key] = string(data)
	override, ok := fc.responses[key]
	fc.mu.Unlock()

	if ok {
		w.WriteHeader(override.status)
		_, _ = io.WriteString(w, override.body)
		return
	}
	fc.route(w, r)
}

func (fc *fakeCluster) route(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	parts := strings.Split(path, "/")

	fc.mu.Lock()
	defer fc.mu.Unlock()

	switch {
	case path == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"cluster_name": "fake",
			"version":      map[string]any{"number": "8.17.0"},
		})
	case path == "_cluster/health":
		writeJSON(w, http.StatusOK, map[string]any{
			"cluster_name":          "fake",
			"status":                "green",
			"number_of_nodes":       1,
			"active_primary_shards": 1,
			"active_shards":         1,
		})
	case len(parts) == 1 && r.Method == http.MethodHead:
		if fc.indexes[parts[0]] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case len(parts) == 1 && r.Method == http.MethodPut:
		if fc.indexes[parts[0]] {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"type": "resource_already_exists_exception"},
			})
			return
		}
		fc.indexes[parts[0]] = true
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "shards_acknowledged": true})
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if !fc.indexes[parts[0]] {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"type": "index_not_found_exception"},
			})
			return
		}
		delete(fc.indexes, parts[0])
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	case len(parts) == 2 && parts[1] == "_count":
		writeJSON(w, http.StatusOK, map[string]any{"count": 3})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no route " + r.Method + " " + path})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody parses a captured JSON request body.
func decodeBody(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}
