package services

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService compiles user input, runs it against the index and projects
// the raw response. Results are built per request and never cached.
type SearchService struct {
	backend   driven.SearchBackend
	compiler  *QueryCompiler
	projector *ResultProjector
	index     string
}

// NewSearchService creates a search service over the named index.
func NewSearchService(
	backend driven.SearchBackend,
	compiler *QueryCompiler,
	index string,
) *SearchService {
	return &SearchService{
		backend:   backend,
		compiler:  compiler,
		projector: NewResultProjector(),
		index:     index,
	}
}

// Search runs a cross-language relevance query.
func (s *SearchService) Search(ctx context.Context, text string, from, size int) (*domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q from=%d size=%d", text, from, size)

	query, err := s.compiler.CompileSearch(text, from, size)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.Search(ctx, s.index, query)
	if err != nil {
		return nil, err
	}

	result, err := s.projector.ProjectSearch(resp)
	if err != nil {
		return nil, err
	}
	logger.Debug("Search returned %d of %d hits in %s", len(result.Hits), result.Total, result.Took)
	return result, nil
}

// Suggest returns completion candidates for a prefix on one text field.
func (s *SearchService) Suggest(ctx context.Context, prefix, field string) ([]domain.Suggestion, error) {
	query, err := s.compiler.CompileSuggest(prefix, field)
	if err != nil {
		return nil, err
	}

	options, err := s.backend.Suggest(ctx, s.index, query)
	if err != nil {
		return nil, err
	}
	if len(options) > query.Size {
		options = options[:query.Size]
	}
	logger.Debug("Suggest %q on %s: %d options", query.Prefix, query.Field, len(options))
	return s.projector.ProjectSuggestions(options), nil
}

// Consecutive reads count verses starting at startID in id order.
func (s *SearchService) Consecutive(ctx context.Context, startID int64, count int) (*domain.VersePage, error) {
	query, err := s.compiler.CompileRange(startID, count)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.Range(ctx, s.index, query)
	if err != nil {
		return nil, err
	}
	return s.projector.ProjectVerses(resp)
}
