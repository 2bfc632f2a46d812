package implementation

import (
	"context"
	"errors"

	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CalendarRepositoryImpl struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) contract.CalendarRepository {
	return &CalendarRepositoryImpl{db: db}
}

func (r *CalendarRepositoryImpl) UpsertIntegration(ctx context.Context, in *model.CalendarIntegration) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_expiry", "updated_at"}),
		}).
		Create(in).Error
	if err != nil {
		return err
	}
	// the conflict path keeps the stored id, reload it
	stored, err := r.FindIntegrationByProvider(ctx, in.UserId, in.Provider)
	if err != nil {
		return err
	}
	if stored != nil {
		*in = *stored
	}
	return nil
}

func (r *CalendarRepositoryImpl) FindIntegration(ctx context.Context, id uuid.UUID) (*model.CalendarIntegration, error) {
	return r.firstIntegration(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CalendarRepositoryImpl) FindIntegrationByProvider(ctx context.Context, userID uuid.UUID, provider string) (*model.CalendarIntegration, error) {
	return r.firstIntegration(r.db.WithContext(ctx).Where("user_id = ? AND provider = ?", userID, provider))
}

func (r *CalendarRepositoryImpl) firstIntegration(q *gorm.DB) (*model.CalendarIntegration, error) {
	var in model.CalendarIntegration
	if err := q.First(&in).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

func (r *CalendarRepositoryImpl) ListIntegrations(ctx context.Context, userID uuid.UUID) ([]model.CalendarIntegration, error) {
	var out []model.CalendarIntegration
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// DeleteIntegration also removes the events mirrored through it.
func (r *CalendarRepositoryImpl) DeleteIntegration(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("integration_id = ?", id).Delete(&model.CalendarEvent{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.CalendarIntegration{}).Error
}

func (r *CalendarRepositoryImpl) CreateEvent(ctx context.Context, e *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *CalendarRepositoryImpl) ListEvents(ctx context.Context, userID uuid.UUID) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("starts_at ASC").Find(&out).Error
	return out, err
}
