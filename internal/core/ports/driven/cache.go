package driven

import (
	"context"

	"github.com/four-robots/unisearch/internal/core/domain"
)

// CacheGateway is a read-through cache of complete responses keyed by request fingerprint.
// Implementations: memory (tests, default), Redis, Badger.
type CacheGateway interface {
	// Get returns the cached response and true, or false on a miss.
	Get(ctx context.Context, fingerprint string) (*domain.UnifiedResponse, bool, error)

	// Put stores a response under the fingerprint.
	Put(ctx context.Context, fingerprint string, resp domain.UnifiedResponse) error

	// Stats reports cache size and hit counters.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear removes every cached response.
	Clear(ctx context.Context) error
}
