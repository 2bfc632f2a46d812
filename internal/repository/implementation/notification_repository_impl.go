package implementation

import (
	"context"
	"errors"
	"time"

	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) CreateNotification(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepositoryImpl) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, filter repository.NotificationFilter) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_archived = ?", userID, filter.Archived)
	if filter.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepositoryImpl) GetSummary(ctx context.Context, userID uuid.UUID) (*repository.NotificationSummary, error) {
	var s repository.NotificationSummary
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_read = ? AND is_archived = ? THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN is_archived = ? THEN 1 ELSE 0 END), 0) AS archived,
			COALESCE(SUM(CASE WHEN is_read = ? AND is_archived = ? AND priority IN ('high', 'urgent') THEN 1 ELSE 0 END), 0) AS high_priority`,
			false, false, true, false, false).
		Where("user_id = ?", userID).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *NotificationRepositoryImpl) findOwned(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	n, err := r.findOwned(ctx, userID, notificationID)
	if err != nil || n == nil {
		return false, err
	}
	if n.IsRead {
		return true, nil
	}
	now := time.Now()
	err = r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
	return err == nil, err
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) Archive(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_archived": true,
			"archived_at": now,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepositoryImpl) Delete(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})
	return result.RowsAffected > 0, result.Error
}

func (r *NotificationRepositoryImpl) ExistsSince(ctx context.Context, userID uuid.UUID, typeCode string, entityID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND type_code = ? AND entity_id = ? AND created_at >= ?", userID, typeCode, entityID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *NotificationRepositoryImpl) GetNotificationTypeByCode(ctx context.Context, code string) (*model.NotificationType, error) {
	var notifType model.NotificationType
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&notifType).Error
	if err != nil {
		return nil, err
	}
	return &notifType, nil
}

func (r *NotificationRepositoryImpl) EnsureNotificationTypes(ctx context.Context, types []model.NotificationType) (int, error) {
	if len(types) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&types)
	return int(result.RowsAffected), result.Error
}

func (r *NotificationRepositoryImpl) GetUserIDsByRole(ctx context.Context, roles ...string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role IN ?", roles).
		Pluck("id", &ids).Error
	return ids, err
}
