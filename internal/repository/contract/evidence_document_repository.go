package contract

import (
	"context"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EvidenceDocumentRepository interface {
	Create(ctx context.Context, doc *entity.EvidenceDocument) error
	Update(ctx context.Context, doc *entity.EvidenceDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EvidenceDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EvidenceDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
