package repository

import (
	"context"
	"time"

	"tradie-recovery-be/internal/model"

	"github.com/google/uuid"
)

type NotificationFilter struct {
	UnreadOnly bool
	Archived   bool
	Limit      int
	Offset     int
}

type NotificationSummary struct {
	Total        int64 `json:"total"`
	Unread       int64 `json:"unread"`
	Archived     int64 `json:"archived"`
	HighPriority int64 `json:"high_priority"`
}

type NotificationRepository interface {
	// Notification Operations
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]model.Notification, int64, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*NotificationSummary, error)
	// The owner-scoped mutations report false when no such notification belongs to userID.
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Archive(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	ExistsSince(ctx context.Context, userID uuid.UUID, typeCode string, entityID uuid.UUID, since time.Time) (bool, error)

	// Registry Operations
	GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error)
	EnsureNotificationTypes(ctx context.Context, types []model.NotificationType) (int, error)
	GetUserIDsByRole(ctx context.Context, roles ...string) ([]uuid.UUID, error)
}
