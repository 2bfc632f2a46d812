package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmitApplicationRequest keeps the camelCase keys the intake form posts.
type SubmitApplicationRequest struct {
	FullName     string   `json:"fullName" validate:"required,notblank,min=2"`
	Phone        string   `json:"phone" validate:"required,notblank,min=6"`
	Email        string   `json:"email" validate:"required,email"`
	BusinessName string   `json:"businessName"`
	Trade        string   `json:"trade" validate:"required,notblank"`
	State        string   `json:"state" validate:"required,notblank"`
	IssueType    string   `json:"issueType" validate:"required,notblank"`
	Description  string   `json:"description" validate:"required,notblank"`
	Amount       *float64 `json:"amount" validate:"omitempty,gte=0"`
	IssueDate    *string  `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
}

type ApplicationListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string `json:"notes"`
}

type ApplicationResponse struct {
	Id           uuid.UUID       `json:"id"`
	UserId       *uuid.UUID      `json:"user_id"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	BusinessName string          `json:"business_name,omitempty"`
	Trade        string          `json:"trade"`
	State        string          `json:"state"`
	IssueType    string          `json:"issue_type"`
	Description  string          `json:"description"`
	Amount       *float64        `json:"amount"`
	IssueDate    *time.Time      `json:"issue_date"`
	Status       string          `json:"status"`
	ReviewedBy   *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNotes  string          `json:"review_notes,omitempty"`
	AiAnalysis   json.RawMessage `json:"ai_analysis,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
