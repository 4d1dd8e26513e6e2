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
	"fin-query-be/pkg/embedding"
	"fin-query-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds uploaded evidence documents: split into chunks,
// embed each chunk, replace the document's rows in the vector store.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	documentRepo      contract.EvidenceDocumentRepository
	embeddingRepo     contract.EvidenceEmbeddingRepository
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	documentRepo contract.EvidenceDocumentRepository,
	embeddingRepo contract.EvidenceEmbeddingRepository,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		documentRepo:      documentRepo,
		embeddingRepo:     embeddingRepo,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedEvidenceMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing evidence embedding for DocumentId: %s", payload.DocumentId)

	doc, err := cs.documentRepo.FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	content := doc.Title + "\n" + doc.Content
	if doc.Source != "" {
		content = doc.Title + "\n来源: " + doc.Source + "\n" + doc.Content
	}

	log.Printf("[INFO] Generating embeddings for document %s (content length: %d)", doc.Id, len(content))

	// ChunkSize 1500 chars with 200 char overlap keeps chunks well inside
	// embedding context limits while preserving boundary context.
	chunks := utils.SplitText(content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newEmbeddings []*entity.EvidenceEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d of document %s: %v", i, doc.Id, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.EvidenceEmbedding{
			Id:             uuid.New(),
			Chunk:          chunk,
			EmbeddingValue: res.Embedding.Values,
			DocumentId:     doc.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	// Replace rather than append so re-ingestion stays idempotent.
	if err := cs.embeddingRepo.DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if err := cs.embeddingRepo.CreateBulk(ctx, newEmbeddings); err != nil {
		log.Printf("[ERROR] Failed to create embeddings: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Stored %d embeddings for document %s", len(newEmbeddings), doc.Id)
	msg.Ack()
}
