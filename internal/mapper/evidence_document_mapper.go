package mapper

import (
	"time"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/model"

	"gorm.io/gorm"
)

type EvidenceDocumentMapper struct{}

func NewEvidenceDocumentMapper() *EvidenceDocumentMapper {
	return &EvidenceDocumentMapper{}
}

func (m *EvidenceDocumentMapper) ToEntity(e *model.EvidenceDocument) *entity.EvidenceDocument {
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

	return &entity.EvidenceDocument{
		Id:        e.Id,
		UserId:    e.UserId,
		Title:     e.Title,
		Source:    e.Source,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *EvidenceDocumentMapper) ToModel(e *entity.EvidenceDocument) *model.EvidenceDocument {
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

	return &model.EvidenceDocument{
		Id:        e.Id,
		UserId:    e.UserId,
		Title:     e.Title,
		Source:    e.Source,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *EvidenceDocumentMapper) ToEntities(docs []*model.EvidenceDocument) []*entity.EvidenceDocument {
	entities := make([]*entity.EvidenceDocument, len(docs))
	for i, e := range docs {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
