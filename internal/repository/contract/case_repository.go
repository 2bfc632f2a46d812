package contract

import (
	"context"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CaseRepository interface {
	Create(ctx context.Context, c *entity.Case) error
	Update(ctx context.Context, c *entity.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	Update(ctx context.Context, c *entity.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type TimelineRepository interface {
	Create(ctx context.Context, t *entity.TimelineEvent) error
	Update(ctx context.Context, t *entity.TimelineEvent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TimelineEvent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TimelineEvent, error)
}
