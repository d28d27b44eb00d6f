// Package memory is the store adapter for conversation points: KNN search,
// bounded page scans for the lexical fallback, and single-point upserts.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pastlight/recollect/internal/db"
	"github.com/pastlight/recollect/internal/domain"
	dommem "github.com/pastlight/recollect/internal/domain/memory"
)

// store is the consumer interface for point operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchPage(ctx context.Context, index string, limit int, fields []string) (*db.SearchResult, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW index parameters for collections created on first write.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the point storage contracts of the reflect and remember
// usecases.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a point repository.
func New(s store) *Repo {
	return &Repo{store: s, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// SearchPoints runs a KNN query against one collection and returns raw
// similarity hits. When minScore is non-nil the threshold is applied here,
// at the store boundary; decay-mode callers pass nil and filter after
// adjustment instead.
func (r *Repo) SearchPoints(
	ctx context.Context, collection string, vector []float32, k int, minScore *float64,
) ([]dommem.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(collection),
		Vector:       vector,
		K:            k,
		ReturnFields: payloadFields(),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collection, err)
	}

	hits := parseHits(sr, collection)
	if minScore == nil {
		return hits, nil
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.Score >= *minScore {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// ScrollPoints fetches a bounded, unscored page of points from a collection.
func (r *Repo) ScrollPoints(
	ctx context.Context, collection string, limit int,
) ([]dommem.Hit, error) {
	sr, err := r.store.SearchPage(ctx, indexName(collection), limit, payloadFields())
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", collection, err)
	}
	return parseHits(sr, collection), nil
}

// UpsertPoint writes one point hash, creating the collection's index first
// if it does not exist yet.
func (r *Repo) UpsertPoint(
	ctx context.Context, collection, id string, vector []float32, payload dommem.Payload,
) error {
	if err := r.ensureIndex(ctx, collection, len(vector)); err != nil {
		return err
	}

	key := pointKey(collection, id)
	if err := r.store.HSet(ctx, key, payloadToFields(payload, vector)); err != nil {
		return fmt.Errorf("hset point %s: %w", key, err)
	}
	return nil
}

func (r *Repo) ensureIndex(ctx context.Context, collection string, dim int) error {
	idx := indexName(collection)
	exists, err := r.store.IndexExists(ctx, idx)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", idx, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:   idx,
		Prefix: keyPrefix(collection),
		VectorField: db.VectorField{
			Name:        "vector",
			Dim:         dim,
			M:           r.hnsw.M,
			EFConstruct: r.hnsw.EFConstruct,
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", idx, err)
	}
	return nil
}

func parseHits(sr *db.SearchResult, collection string) []dommem.Hit {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := keyPrefix(collection)
	hits := make([]dommem.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, dommem.Hit{
			ID:         strings.TrimPrefix(entry.Key, prefix),
			Score:      entry.Score,
			Collection: collection,
			Payload:    fieldsToPayload(entry.Fields),
		})
	}
	return hits
}

func keyPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":"
}

func pointKey(collection, id string) string {
	return keyPrefix(collection) + id
}

func indexName(collection string) string {
	return domain.KeyPrefix + collection + ":idx"
}
