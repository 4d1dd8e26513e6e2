package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestEvidenceRequest struct {
	Title   string `json:"title" validate:"required"`
	Source  string `json:"source,omitempty"`
	Content string `json:"content" validate:"required,min=20"`
}

type IngestEvidenceResponse struct {
	Id uuid.UUID `json:"id"`
}

type EvidenceDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishEmbedEvidenceMessage is the payload carried on the ingestion bus
// from the upload handler to the embedding consumer.
type PublishEmbedEvidenceMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
