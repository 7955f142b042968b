package driving

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// SearchService answers verse queries.
type SearchService interface {
	// Search runs a relevance query across all three languages.
	// Returns domain.ErrInvalidQuery for blank text or negative paging.
	Search(ctx context.Context, text string, from, size int) (*domain.SearchResult, error)

	// Suggest returns up to domain.MaxSuggestions completions for a prefix.
	// Returns domain.ErrInvalidField for an unknown field.
	Suggest(ctx context.Context, prefix, field string) ([]domain.Suggestion, error)

	// Consecutive returns count verses starting at startID, ordered by id.
	Consecutive(ctx context.Context, startID int64, count int) (*domain.VersePage, error)
}
