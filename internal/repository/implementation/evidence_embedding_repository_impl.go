package implementation

import (
	"context"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/mapper"
	"fin-query-be/internal/model"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type EvidenceEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EvidenceEmbeddingMapper
}

func NewEvidenceEmbeddingRepository(db *gorm.DB) contract.EvidenceEmbeddingRepository {
	return &EvidenceEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewEvidenceEmbeddingMapper(),
	}
}

func (r *EvidenceEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EvidenceEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.EvidenceEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *EvidenceEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.EvidenceEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *EvidenceEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EvidenceEmbedding{}, id).Error
}

func (r *EvidenceEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.EvidenceEmbedding{}).Error
}

func (r *EvidenceEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvidenceEmbedding, error) {
	var models []*model.EvidenceEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EvidenceEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.EvidenceEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so the select
// computes 1 - (embedding_value <=> query_vector).
func (r *EvidenceEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredEvidenceEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.EvidenceEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("evidence_embeddings").
		Select("evidence_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("evidence_embeddings.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredEvidenceEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredEvidenceEmbedding{
			Embedding:  r.mapper.ToEntity(&res.EvidenceEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
