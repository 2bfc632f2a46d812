package implementation

import (
	"context"
	"errors"
	"strings"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/mapper"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/contract"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewApplicationRepository(db *gorm.DB) contract.ApplicationRepository {
	return &ApplicationRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *entity.Application) error {
	m := r.mapper.ApplicationToModel(app)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*app = *r.mapper.ApplicationToEntity(m)
	return nil
}

func (r *ApplicationRepositoryImpl) Update(ctx context.Context, app *entity.Application) error {
	m := r.mapper.ApplicationToModel(app)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*app = *r.mapper.ApplicationToEntity(m)
	return nil
}

func (r *ApplicationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Application, error) {
	var m model.Application
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ApplicationToEntity(&m), nil
}

func (r *ApplicationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Application, error) {
	var rows []*model.Application
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Application, len(rows))
	for i, m := range rows {
		out[i] = r.mapper.ApplicationToEntity(m)
	}
	return out, nil
}

func (r *ApplicationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Application{}), specs...).Count(&count).Error
	return count, err
}

func (r *ApplicationRepositoryImpl) LinkByEmail(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("LOWER(email) = ? AND user_id IS NULL", strings.ToLower(strings.TrimSpace(email))).
		Update("user_id", userID)
	return result.RowsAffected, result.Error
}

func (r *ApplicationRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.db, &model.Application{}, "status")
}
