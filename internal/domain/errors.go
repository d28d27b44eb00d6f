package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed search request, rejected before any I/O.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStoreUnavailable signals that the memory store could not be reached.
	ErrStoreUnavailable = errors.New("memory store unavailable")
	// ErrEmbeddingUnavailable signals that no embedding capability is configured
	// or that the provider call failed; the engine degrades to lexical matching.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
