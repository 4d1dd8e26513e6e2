package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fin-query-be/internal/dto"
	"fin-query-be/internal/entity"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/specification"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IEvidenceService manages the evidence corpus the retrieval gateway
// searches. Uploads are stored immediately; chunking and embedding run
// asynchronously on the ingestion bus.
type IEvidenceService interface {
	Ingest(ctx context.Context, userId uuid.UUID, request *dto.IngestEvidenceRequest) (*dto.IngestEvidenceResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.EvidenceDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
}

type evidenceService struct {
	documentRepo     contract.EvidenceDocumentRepository
	embeddingRepo    contract.EvidenceEmbeddingRepository
	publisherService IPublisherService
}

func NewEvidenceService(
	documentRepo contract.EvidenceDocumentRepository,
	embeddingRepo contract.EvidenceEmbeddingRepository,
	publisherService IPublisherService,
) IEvidenceService {
	return &evidenceService{
		documentRepo:     documentRepo,
		embeddingRepo:    embeddingRepo,
		publisherService: publisherService,
	}
}

func (s *evidenceService) Ingest(ctx context.Context, userId uuid.UUID, request *dto.IngestEvidenceRequest) (*dto.IngestEvidenceResponse, error) {
	doc := &entity.EvidenceDocument{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     request.Title,
		Source:    request.Source,
		Content:   request.Content,
		CreatedAt: time.Now(),
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	msgJson, err := json.Marshal(dto.PublishEmbedEvidenceMessage{DocumentId: doc.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		// The document row exists; embedding can be re-triggered later.
		log.Printf("[ERROR] Failed to publish embed message for document %s: %v", doc.Id, err)
	}

	return &dto.IngestEvidenceResponse{Id: doc.Id}, nil
}

func (s *evidenceService) List(ctx context.Context, userId uuid.UUID) ([]*dto.EvidenceDocumentResponse, error) {
	docs, err := s.documentRepo.FindAll(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.EvidenceDocumentResponse, len(docs))
	for i, d := range docs {
		res[i] = &dto.EvidenceDocumentResponse{
			Id:        d.Id,
			Title:     d.Title,
			Source:    d.Source,
			CreatedAt: d.CreatedAt,
		}
	}
	return res, nil
}

func (s *evidenceService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	doc, err := s.documentRepo.FindOne(ctx, specification.ByID{ID: documentId}, specification.ByUserID{UserID: userId})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	if err := s.embeddingRepo.DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	return s.documentRepo.Delete(ctx, documentId)
}
