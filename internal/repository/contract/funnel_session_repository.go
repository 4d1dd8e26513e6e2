package contract

import (
	"context"

	"fin-query-be/internal/entity"
	"fin-query-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FunnelSessionRepository interface {
	Create(ctx context.Context, session *entity.FunnelSession) error
	Update(ctx context.Context, session *entity.FunnelSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FunnelSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FunnelSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
