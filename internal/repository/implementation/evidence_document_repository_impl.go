package implementation

import (
	"context"
	"errors"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/mapper"
	"fin-query-be/internal/model"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/scope"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvidenceDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EvidenceDocumentMapper
}

func NewEvidenceDocumentRepository(db *gorm.DB) contract.EvidenceDocumentRepository {
	return &EvidenceDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewEvidenceDocumentMapper(),
	}
}

func (r *EvidenceDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EvidenceDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.EvidenceDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *EvidenceDocumentRepositoryImpl) Update(ctx context.Context, doc *entity.EvidenceDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *EvidenceDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EvidenceDocument{}, id).Error
}

func (r *EvidenceDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EvidenceDocument, error) {
	var m model.EvidenceDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EvidenceDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvidenceDocument, error) {
	var models []*model.EvidenceDocument
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EvidenceDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.EvidenceDocument{}).Count(&count).Error
	return count, err
}
