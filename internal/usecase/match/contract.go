package match

import (
	"context"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
)

// Embedder vectorizes descriptive text into embeddings. Implementations
// that also satisfy domain.BatchEmbedder get one API call per date
// partition instead of one per row.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
