package contract

import (
	"context"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error
	// AddStrategyPackCredits adjusts credits atomically; a negative delta
	// only applies when enough credits remain.
	AddStrategyPackCredits(ctx context.Context, id uuid.UUID, delta int) (bool, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
}
