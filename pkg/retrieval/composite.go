package retrieval

import (
	"context"
	"log"
)

// CompositeGateway tries the local corpus first and falls back to web search
// when the corpus has nothing, mirroring how the evidence collection worked
// before the funnel owned retry policy.
type CompositeGateway struct {
	primary  Gateway
	fallback Gateway
	logger   *log.Logger
}

var _ Gateway = &CompositeGateway{}

func NewCompositeGateway(primary, fallback Gateway, logger *log.Logger) *CompositeGateway {
	return &CompositeGateway{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (g *CompositeGateway) Fetch(ctx context.Context, keywords []string) ([]Chunk, error) {
	chunks, err := g.primary.Fetch(ctx, keywords)
	if err != nil {
		g.logger.Printf("[GATEWAY] primary fetch failed, falling back: %v", err)
	} else if len(chunks) > 0 {
		return chunks, nil
	}

	if g.fallback == nil {
		return chunks, err
	}

	fallbackChunks, fbErr := g.fallback.Fetch(ctx, keywords)
	if fbErr != nil {
		return nil, fbErr
	}
	return fallbackChunks, nil
}
