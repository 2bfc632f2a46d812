package unitofwork

import (
	"context"

	"tradie-recovery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ApplicationRepository() contract.ApplicationRepository
	CaseRepository() contract.CaseRepository
	ContractRepository() contract.ContractRepository
	TimelineRepository() contract.TimelineRepository
	DocumentRepository() contract.DocumentRepository
	TagRepository() contract.TagRepository
	PaymentRepository() contract.PaymentRepository
	CalendarRepository() contract.CalendarRepository
}
