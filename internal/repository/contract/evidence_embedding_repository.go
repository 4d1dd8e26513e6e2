package contract

import (
	"context"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredEvidenceEmbedding pairs an embedding row with its cosine
// similarity to the query vector.
type ScoredEvidenceEmbedding struct {
	Embedding  *entity.EvidenceEmbedding
	Similarity float64
}

type EvidenceEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.EvidenceEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.EvidenceEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvidenceEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredEvidenceEmbedding, error)
}
