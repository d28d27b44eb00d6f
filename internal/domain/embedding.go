package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// A nil Embedder at the composition root means the process runs in
// degraded (lexical) mode.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	ModelName() string
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
