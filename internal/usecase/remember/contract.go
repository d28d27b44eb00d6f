package remember

import (
	"context"

	"github.com/pastlight/recollect/internal/domain/memory"
)

// Repository defines the storage contract for point persistence.
type Repository interface {
	// UpsertPoint writes one point, creating the collection index on
	// first use.
	UpsertPoint(ctx context.Context, collection, id string, vector []float32, payload memory.Payload) error
}
