// Package db defines the storage contract the repositories program against.
// The concrete implementation in db/redis speaks RediSearch via rueidis;
// rueidis handles both Redis 8+ and Valkey, so one driver suffices.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore writes point payloads as hashes. Reads go through the FT
// search surface, so writing is all the repositories need here.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
}

// KVStore provides simple key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// IndexManager provides FT index lifecycle and discovery operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)
}

// Searcher provides query operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchPage(ctx context.Context, index string, limit int, fields []string) (*SearchResult, error)
}

// KNNQuery describes a vector similarity search against one index.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchEntry is one raw hit from FT.SEARCH: the document key, the cosine
// similarity (for KNN), and the returned hash fields.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult is the parsed FT.SEARCH reply.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// IndexDefinition describes an FT index over hash keys with a single vector
// field, which is all the memory collections need.
type IndexDefinition struct {
	Name        string
	Prefix      string
	VectorField VectorField
}

// VectorField holds HNSW vector field parameters for FT.CREATE.
type VectorField struct {
	Name        string
	Dim         int
	M           int
	EFConstruct int
}
