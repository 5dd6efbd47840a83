package domain

import "errors"

// KeyPrefix namespaces all keys this service writes to the store.
const KeyPrefix = "roommatch:"

var (
	// ErrMissingColumn signals a required column absent from an input dataset.
	ErrMissingColumn = errors.New("missing column")
	// ErrRateLimited signals a rate limit hit on the embedding provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidWeights signals a similarity weight triple that does not sum to one.
	ErrInvalidWeights = errors.New("invalid similarity weights")
	// ErrInvalidThreshold signals an acceptance threshold outside [0,1].
	ErrInvalidThreshold = errors.New("invalid acceptance threshold")
)
