// Package retrieval defines the evidence-fetching boundary of the funnel.
package retrieval

import (
	"context"
)

// Chunk is one unit of retrieved content, before evaluation.
type Chunk struct {
	SourceText string  `json:"source_text"`
	Origin     string  `json:"origin,omitempty"` // "corpus" | "web"
	Score      float32 `json:"score,omitempty"`
}

// Gateway fetches evidence for an ordered keyword sequence. It may return an
// empty slice; the controller owns all retry policy on top of it.
type Gateway interface {
	Fetch(ctx context.Context, keywords []string) ([]Chunk, error)
}
