package driving

import (
	"context"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// HealthService reports backend and index health.
type HealthService interface {
	// Health returns a snapshot of the backend and the verse index.
	Health(ctx context.Context) (*domain.HealthReport, error)
}
