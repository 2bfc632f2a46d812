package mapper

import (
	"tradie-recovery-be/internal/entity"
	"tradie-recovery-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                   u.Id,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		FullName:             u.FullName,
		Phone:                u.Phone,
		BusinessName:         u.BusinessName,
		Role:                 entity.UserRole(u.Role),
		Status:               entity.UserStatus(u.Status),
		PlanType:             entity.PlanType(u.PlanType),
		PlanStatus:           u.PlanStatus,
		PlanPeriodStart:      u.PlanPeriodStart,
		PlanPeriodEnd:        u.PlanPeriodEnd,
		StrategyPackCredits:  u.StrategyPackCredits,
		StripeCustomerId:     u.StripeCustomerId,
		StripeSubscriptionId: u.StripeSubscriptionId,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                   u.Id,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		FullName:             u.FullName,
		Phone:                u.Phone,
		BusinessName:         u.BusinessName,
		Role:                 string(u.Role),
		Status:               string(u.Status),
		PlanType:             string(u.PlanType),
		PlanStatus:           u.PlanStatus,
		PlanPeriodStart:      u.PlanPeriodStart,
		PlanPeriodEnd:        u.PlanPeriodEnd,
		StrategyPackCredits:  u.StrategyPackCredits,
		StripeCustomerId:     u.StripeCustomerId,
		StripeSubscriptionId: u.StripeSubscriptionId,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
