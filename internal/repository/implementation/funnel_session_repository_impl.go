package implementation

import (
	"context"
	"errors"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/mapper"
	"fin-query-be/internal/model"
	"fin-query-be/internal/repository/contract"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FunnelSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FunnelSessionMapper
}

func NewFunnelSessionRepository(db *gorm.DB) contract.FunnelSessionRepository {
	return &FunnelSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewFunnelSessionMapper(),
	}
}

func (r *FunnelSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FunnelSessionRepositoryImpl) Create(ctx context.Context, session *entity.FunnelSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *FunnelSessionRepositoryImpl) Update(ctx context.Context, session *entity.FunnelSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *FunnelSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FunnelSession{}, id).Error
}

func (r *FunnelSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FunnelSession, error) {
	var m model.FunnelSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FunnelSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FunnelSession, error) {
	var models []*model.FunnelSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.FunnelSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *FunnelSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.FunnelSession{}).Count(&count).Error
	return count, err
}
