package vector

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fin-query-be/pkg/embedding"
	"fin-query-be/pkg/retrieval"
)

// ScoredChunk is a corpus chunk with its cosine similarity to the query.
type ScoredChunk struct {
	Text       string
	Source     string
	Similarity float64
}

// SimilaritySearcher is the slice of the evidence store the retriever needs.
type SimilaritySearcher interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]ScoredChunk, error)
}

// Config encapsulates search parameters
type Config struct {
	DBThreshold    float64
	LogicThreshold float64
	TopK           int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		DBThreshold:    0.0,
		LogicThreshold: 0.35,
		TopK:           10,
	}
}

// Retriever answers keyword fetches from the local evidence corpus via
// embedding similarity.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	searcher          SimilaritySearcher
	config            Config
	logger            *log.Logger
}

var _ retrieval.Gateway = &Retriever{}

func NewRetriever(
	embeddingProvider embedding.EmbeddingProvider,
	searcher SimilaritySearcher,
	config Config,
	logger *log.Logger,
) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		searcher:          searcher,
		config:            config,
		logger:            logger,
	}
}

// Fetch embeds the keyword sequence and returns corpus chunks above the
// logical similarity threshold.
func (r *Retriever) Fetch(ctx context.Context, keywords []string) ([]retrieval.Chunk, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	query := strings.Join(keywords, " ")

	embeddingRes, err := r.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := r.searcher.SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		r.config.TopK,
		r.config.DBThreshold,
	)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	r.logger.Printf("[DEBUG] Raw corpus results: %d chunks", len(scored))

	var chunks []retrieval.Chunk
	for i, res := range scored {
		if res.Similarity < r.config.LogicThreshold {
			r.logger.Printf("[DEBUG] Chunk %d: Score=%.4f [FILTERED]", i+1, res.Similarity)
			continue
		}
		r.logger.Printf("[DEBUG] Chunk %d: Score=%.4f [KEEP]", i+1, res.Similarity)
		chunks = append(chunks, retrieval.Chunk{
			SourceText: res.Text,
			Origin:     "corpus",
			Score:      float32(res.Similarity),
		})
	}

	return chunks, nil
}
