package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateContractRequest struct {
	Title         string     `json:"title" validate:"required,min=3"`
	Status        string     `json:"status" validate:"omitempty,oneof=draft active completed terminated"`
	Parties       []string   `json:"parties" validate:"omitempty,dive,required"`
	Value         float64    `json:"value" validate:"gte=0"`
	Terms         string     `json:"terms"`
	NextAction    string     `json:"next_action"`
	NextActionDue *time.Time `json:"next_action_due"`
}

type UpdateContractRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=3"`
	Status        *string    `json:"status" validate:"omitempty,oneof=draft active completed terminated"`
	Parties       []string   `json:"parties" validate:"omitempty,dive,required"`
	Value         *float64   `json:"value" validate:"omitempty,gte=0"`
	Terms         *string    `json:"terms"`
	NextAction    *string    `json:"next_action"`
	NextActionDue *time.Time `json:"next_action_due"`
}

type AnalyzeContractRequest struct {
	State string `json:"state"`
}

type ContractListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=draft active completed terminated"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type ContractResponse struct {
	Id             uuid.UUID       `json:"id"`
	UserId         uuid.UUID       `json:"user_id"`
	ContractNumber string          `json:"contract_number"`
	Title          string          `json:"title"`
	Status         string          `json:"status"`
	Parties        []string        `json:"parties"`
	Value          float64         `json:"value"`
	Terms          string          `json:"terms,omitempty"`
	AiAnalysis     json.RawMessage `json:"ai_analysis,omitempty"`
	NextAction     string          `json:"next_action,omitempty"`
	NextActionDue  *time.Time      `json:"next_action_due,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
