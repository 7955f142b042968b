package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/normalisers/versecsv"
)

const defaultHistoryLimit = 20

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text := firstNonEmpty(q.Get("q"), q.Get("query"))
	if strings.TrimSpace(text) == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	from, err := intParam(q.Get("from"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid from: %v", err))
		return
	}
	size, err := intParam(q.Get("size"), s.opts.DefaultSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid size: %v", err))
		return
	}

	result, err := s.svc.Search.Search(r.Context(), text, from, size)
	if err != nil {
		respondServiceError(w, "search", err)
		return
	}
	respond(w, http.StatusOK, searchResponse{
		Total:  result.Total,
		TookMs: result.Took.Milliseconds(),
		Hits:   toHits(result.Hits),
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prefix := firstNonEmpty(q.Get("q"), q.Get("query"), q.Get("prefix"))
	if strings.TrimSpace(prefix) == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	field := canonicalField(firstNonEmpty(q.Get("field"), string(domain.FieldEnglish)))

	suggestions, err := s.svc.Search.Suggest(r.Context(), prefix, field)
	if err != nil {
		respondServiceError(w, "suggest", err)
		return
	}
	texts := make([]string, len(suggestions))
	for i, sg := range suggestions {
		texts[i] = sg.Text
	}
	respond(w, http.StatusOK, suggestResponse{Field: field, Suggestions: texts})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := int64Param(firstNonEmpty(q.Get("id"), q.Get("start")), 1)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid verse id")
		return
	}
	count, err := intParam(q.Get("count"), 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid count: %v", err))
		return
	}

	page, err := s.svc.Search.Consecutive(r.Context(), start, count)
	if err != nil {
		respondServiceError(w, "read", err)
		return
	}
	respond(w, http.StatusOK, page)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	body, closeBody, err := uploadBody(r)
	if err != nil {
		respondError(w, uploadStatus(err), err.Error())
		return
	}
	defer closeBody()

	verses, err := versecsv.Parse(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rebuild, _ := strconv.ParseBool(r.URL.Query().Get("rebuild"))

	unlock := s.svc.Locks.TryLock(s.svc.Index)
	if unlock == nil {
		respondError(w, http.StatusConflict, "an ingestion is already running for this index")
		return
	}
	defer unlock()

	var outcome *domain.BulkOutcome
	if rebuild {
		outcome, err = s.svc.Ingest.Reload(r.Context(), verses)
	} else {
		outcome, err = s.svc.Ingest.Ingest(r.Context(), verses)
	}

	var partial *domain.PartialIndexError
	switch {
	case errors.As(err, &partial):
		respond(w, http.StatusMultiStatus, uploadResponse{
			Message: partial.Error(),
			Count:   len(verses),
			Outcome: &partial.Outcome,
		})
	case err != nil:
		respondServiceError(w, "upload", err)
	default:
		respond(w, http.StatusOK, uploadResponse{
			Message: "CSV data indexed successfully",
			Count:   len(verses),
			Outcome: outcome,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Health.Health(r.Context())
	if err != nil {
		respondServiceError(w, "health", err)
		return
	}
	respond(w, http.StatusOK, healthResponse{Status: "success", Health: report})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if err != nil || limit < 1 {
		respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	runs, err := s.svc.Ingest.History(r.Context(), limit)
	if err != nil {
		respondServiceError(w, "history", err)
		return
	}
	out := make([]historyEntry, len(runs))
	for i, run := range runs {
		out[i] = toHistoryEntry(run)
	}
	respond(w, http.StatusOK, historyResponse{Runs: out})
}

var errNoFile = errors.New("no file uploaded")

// csvMediaTypes are the part content types accepted as CSV.
var csvMediaTypes = map[string]bool{
	versecsv.MIMEType:          true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

// uploadBody returns the CSV stream from a multipart "file" part or the raw body.
func uploadBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, errNoFile
	}
	if ct := header.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !csvMediaTypes[mt] {
			file.Close()
			return nil, nil, fmt.Errorf("only CSV files are allowed, got %s", mt)
		}
	}
	return file, func() { file.Close() }, nil
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// canonicalField maps legacy ayat_text_* names to current field names.
func canonicalField(name string) string {
	return strings.TrimPrefix(name, "ayat_")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func int64Param(raw string, def int64) (int64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
