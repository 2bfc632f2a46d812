package implementation

import (
	"context"
	"errors"

	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/mapper"
	"tradie-recovery-be/internal/model"
	"tradie-recovery-be/internal/repository/contract"
	"tradie-recovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewCaseRepository(db *gorm.DB) contract.CaseRepository {
	return &CaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *CaseRepositoryImpl) Create(ctx context.Context, c *entity.Case) error {
	m := r.mapper.CaseToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.CaseToEntity(m)
	return nil
}

// Update writes every column except the owner, which is fixed at creation.
func (r *CaseRepositoryImpl) Update(ctx context.Context, c *entity.Case) error {
	m := r.mapper.CaseToModel(c)
	err := r.db.WithContext(ctx).Model(m).
		Select("*").
		Omit("id", "user_id", "case_number", "created_at", "deleted_at").
		Updates(m).Error
	if err != nil {
		return err
	}
	*c = *r.mapper.CaseToEntity(m)
	return nil
}

func (r *CaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Case{}).Error
}

func (r *CaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Case, error) {
	var m model.Case
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CaseToEntity(&m), nil
}

func (r *CaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Case, error) {
	var rows []*model.Case
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Case, len(rows))
	for i, m := range rows {
		out[i] = r.mapper.CaseToEntity(m)
	}
	return out, nil
}

func (r *CaseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Case{}), specs...).Count(&count).Error
	return count, err
}

func (r *CaseRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.db, &model.Case{}, "status")
}

type ContractRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewContractRepository(db *gorm.DB) contract.ContractRepository {
	return &ContractRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *ContractRepositoryImpl) Create(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ContractToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ContractToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) Update(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ContractToModel(c)
	err := r.db.WithContext(ctx).Model(m).
		Select("*").
		Omit("id", "user_id", "contract_number", "created_at", "deleted_at").
		Updates(m).Error
	if err != nil {
		return err
	}
	*c = *r.mapper.ContractToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Contract{}).Error
}

func (r *ContractRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error) {
	var m model.Contract
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ContractToEntity(&m), nil
}

func (r *ContractRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error) {
	var rows []*model.Contract
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Contract, len(rows))
	for i, m := range rows {
		out[i] = r.mapper.ContractToEntity(m)
	}
	return out, nil
}

func (r *ContractRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	err := applySpecifications(r.db.WithContext(ctx).Model(&model.Contract{}), specs...).Count(&count).Error
	return count, err
}

type TimelineRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CaseMapper
}

func NewTimelineRepository(db *gorm.DB) contract.TimelineRepository {
	return &TimelineRepositoryImpl{
		db:     db,
		mapper: mapper.NewCaseMapper(),
	}
}

func (r *TimelineRepositoryImpl) Create(ctx context.Context, t *entity.TimelineEvent) error {
	m := r.mapper.TimelineToModel(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*t = *r.mapper.TimelineToEntity(m)
	return nil
}

func (r *TimelineRepositoryImpl) Update(ctx context.Context, t *entity.TimelineEvent) error {
	m := r.mapper.TimelineToModel(t)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*t = *r.mapper.TimelineToEntity(m)
	return nil
}

func (r *TimelineRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TimelineEvent, error) {
	var m model.TimelineEvent
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TimelineToEntity(&m), nil
}

func (r *TimelineRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TimelineEvent, error) {
	var rows []*model.TimelineEvent
	if err := applySpecifications(r.db.WithContext(ctx), specs...).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.TimelineEvent, len(rows))
	for i, m := range rows {
		out[i] = r.mapper.TimelineToEntity(m)
	}
	return out, nil
}
