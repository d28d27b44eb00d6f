package reflect

import (
	"context"

	"github.com/pastlight/recollect/internal/domain/memory"
)

// Repository defines the storage contract for point retrieval.
type Repository interface {
	// SearchPoints runs a KNN query. A non-nil minScore applies the
	// threshold at the store boundary; nil retrieves unthresholded
	// candidates for decay-aware scoring.
	SearchPoints(ctx context.Context, collection string, vector []float32, k int, minScore *float64) ([]memory.Hit, error)

	// ScrollPoints fetches a bounded, unscored page for lexical matching.
	ScrollPoints(ctx context.Context, collection string, limit int) ([]memory.Hit, error)
}

// CollectionLister enumerates queryable collections.
type CollectionLister interface {
	List(ctx context.Context) ([]memory.Collection, error)
}
