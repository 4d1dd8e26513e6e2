package bootstrap

import (
	"context"

	"fin-query-be/internal/repository/contract"
	"fin-query-be/pkg/retrieval/vector"
)

// evidenceSearcher bridges the pgvector repository to the retriever's
// searcher contract.
type evidenceSearcher struct {
	repo contract.EvidenceEmbeddingRepository
}

func (s *evidenceSearcher) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]vector.ScoredChunk, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, embedding, limit, minSimilarity)
	if err != nil {
		return nil, err
	}
	chunks := make([]vector.ScoredChunk, len(scored))
	for i, sc := range scored {
		chunks[i] = vector.ScoredChunk{
			Text:       sc.Embedding.Chunk,
			Source:     sc.Embedding.DocumentId.String(),
			Similarity: sc.Similarity,
		}
	}
	return chunks, nil
}
