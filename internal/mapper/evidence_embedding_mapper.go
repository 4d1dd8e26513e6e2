package mapper

import (
	"time"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type EvidenceEmbeddingMapper struct{}

func NewEvidenceEmbeddingMapper() *EvidenceEmbeddingMapper {
	return &EvidenceEmbeddingMapper{}
}

func (m *EvidenceEmbeddingMapper) ToEntity(e *model.EvidenceEmbedding) *entity.EvidenceEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.EvidenceEmbedding{
		Id:             e.Id,
		Chunk:          e.Chunk,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		DocumentId:     e.DocumentId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *EvidenceEmbeddingMapper) ToModel(e *entity.EvidenceEmbedding) *model.EvidenceEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.EvidenceEmbedding{
		Id:             e.Id,
		Chunk:          e.Chunk,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		DocumentId:     e.DocumentId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *EvidenceEmbeddingMapper) ToEntities(embeddings []*model.EvidenceEmbedding) []*entity.EvidenceEmbedding {
	entities := make([]*entity.EvidenceEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *EvidenceEmbeddingMapper) ToModels(embeddings []*entity.EvidenceEmbedding) []*model.EvidenceEmbedding {
	models := make([]*model.EvidenceEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
