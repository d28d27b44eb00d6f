// Package registry enumerates queryable memory collections and classifies
// them by name. Collections follow the `<prefix><project>_<modelsuffix>`
// convention (e.g. conv_projA_voyage); the registry holds no identity beyond
// what the store reports.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pastlight/recollect/internal/domain"
	"github.com/pastlight/recollect/internal/domain/memory"
)

// lister is the consumer interface for index discovery.
type lister interface {
	ListIndexes(ctx context.Context) ([]string, error)
}

const indexSuffix = ":idx"

// Registry lists collections for the active embedding model family.
type Registry struct {
	store            lister
	keyPrefix        string // storage namespace, e.g. "recollect:"
	collectionPrefix string // e.g. "conv_"
	modelSuffix      string // e.g. "voyage"
}

// New creates a registry.
func New(store lister, keyPrefix, collectionPrefix, modelSuffix string) *Registry {
	return &Registry{
		store:            store,
		keyPrefix:        keyPrefix,
		collectionPrefix: collectionPrefix,
		modelSuffix:      modelSuffix,
	}
}

// List enumerates collections fresh on every call: the import pipeline can
// create collections at any time, so nothing is cached. A store failure is
// reported as domain.ErrStoreUnavailable; the engine treats that as zero
// collections rather than aborting the request.
func (r *Registry) List(ctx context.Context) ([]memory.Collection, error) {
	indexes, err := r.store.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list indexes: %w", domain.ErrStoreUnavailable, err)
	}

	cols := make([]memory.Collection, 0, len(indexes))
	for _, idx := range indexes {
		name, ok := r.collectionFromIndex(idx)
		if !ok || !r.queryable(name) {
			continue
		}
		cols = append(cols, memory.Collection{Name: name, Project: r.Project(name)})
	}

	// Deterministic fan-out and merge order.
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })

	return cols, nil
}

// Project derives the project label from a collection name by stripping the
// prefix/suffix convention. A point payload's explicit project field takes
// precedence over this label at render time.
func (r *Registry) Project(collection string) string {
	p := strings.TrimPrefix(collection, r.collectionPrefix)
	p = strings.TrimSuffix(p, "_"+r.modelSuffix)
	if p == "" {
		return collection
	}
	return p
}

// collectionFromIndex maps an FT index name back to its collection name.
// Indexes live at "<keyPrefix><collection>:idx"; anything else in the store
// belongs to other tenants and is skipped.
func (r *Registry) collectionFromIndex(index string) (string, bool) {
	if !strings.HasPrefix(index, r.keyPrefix) || !strings.HasSuffix(index, indexSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(index, r.keyPrefix), indexSuffix)
	return name, name != ""
}

// queryable reports whether a collection belongs to the active model family.
// The lexical fallback intentionally shares this enumeration instead of
// hard-coupling to one family's naming.
func (r *Registry) queryable(collection string) bool {
	return strings.HasPrefix(collection, r.collectionPrefix) &&
		strings.HasSuffix(collection, "_"+r.modelSuffix)
}
