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

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepositoryImpl) CreateIfAbsent(ctx context.Context, p *model.Payment) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PaymentRepositoryImpl) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*model.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ? AND idempotency_key = ?", userID, key))
}

func (r *PaymentRepositoryImpl) first(q *gorm.DB) (*model.Payment, error) {
	var p model.Payment
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
