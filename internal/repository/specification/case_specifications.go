package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByStatus is a no-op for an empty status so list filters can pass it through.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	if s.Status == "" {
		return db
	}
	return db.Where("status = ?", s.Status)
}

type ByCaseID struct {
	CaseID uuid.UUID
}

func (s ByCaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id = ?", s.CaseID)
}

type ByContractID struct {
	ContractID uuid.UUID
}

func (s ByContractID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contract_id = ?", s.ContractID)
}

// NextActionDueBetween selects rows whose next action falls in [From, To].
type NextActionDueBetween struct {
	From time.Time
	To   time.Time
}

func (s NextActionDueBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_action_due IS NOT NULL AND next_action_due >= ? AND next_action_due <= ?", s.From, s.To)
}

type NotStatus struct {
	Status string
}

func (s NotStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", s.Status)
}
