package contract

import (
	"context"

	"tradie-recovery-be/internal/model"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	// CreateIfAbsent reports false when (user_id, idempotency_key) already exists.
	CreateIfAbsent(ctx context.Context, p *model.Payment) (bool, error)
	Update(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)
}
