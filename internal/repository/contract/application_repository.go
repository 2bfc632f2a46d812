package contract

import (
	"context"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	Update(ctx context.Context, app *entity.Application) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Application, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Application, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// LinkByEmail attaches unclaimed applications submitted with email to userID.
	LinkByEmail(ctx context.Context, email string, userID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
