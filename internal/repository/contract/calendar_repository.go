package contract

import (
	"context"

	"tradie-recovery-be/internal/model"

	"github.com/google/uuid"
)

type CalendarRepository interface {
	UpsertIntegration(ctx context.Context, in *model.CalendarIntegration) error
	FindIntegration(ctx context.Context, id uuid.UUID) (*model.CalendarIntegration, error)
	FindIntegrationByProvider(ctx context.Context, userID uuid.UUID, provider string) (*model.CalendarIntegration, error)
	ListIntegrations(ctx context.Context, userID uuid.UUID) ([]model.CalendarIntegration, error)
	DeleteIntegration(ctx context.Context, id uuid.UUID) error

	CreateEvent(ctx context.Context, e *model.CalendarEvent) error
	ListEvents(ctx context.Context, userID uuid.UUID) ([]model.CalendarEvent, error)
}
