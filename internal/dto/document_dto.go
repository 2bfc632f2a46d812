package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentListRequest struct {
	CaseId     string `query:"case_id" validate:"omitempty,uuid"`
	ContractId string `query:"contract_id" validate:"omitempty,uuid"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

type UploadDocumentRequest struct {
	CaseId      *uuid.UUID
	ContractId  *uuid.UUID
	Category    string
	Description string
	Filename    string
	Size        int64
}

type UpdateDocumentRequest struct {
	Category    *string `json:"category" validate:"omitempty,max=50"`
	Description *string `json:"description"`
}

type DocumentResponse struct {
	Id          uuid.UUID  `json:"id"`
	UserId      uuid.UUID  `json:"user_id"`
	CaseId      *uuid.UUID `json:"case_id,omitempty"`
	ContractId  *uuid.UUID `json:"contract_id,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
}

// --- Tags ---

type TagResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	UsageCount  int       `json:"usage_count"`
}

type DocumentTagResponse struct {
	TagResponse
	Source     string     `json:"source"`
	Confidence *float64   `json:"confidence,omitempty"`
	AssignedBy *uuid.UUID `json:"assigned_by,omitempty"`
	AssignedAt time.Time  `json:"assigned_at"`
}

type ApplyTagsRequest struct {
	Tags        []string           `json:"tags" validate:"required,min=1,dive,required"`
	Source      string             `json:"source" validate:"omitempty,oneof=ai manual"`
	Confidences map[string]float64 `json:"confidences"`
}

type TagSuggestionResponse struct {
	DocumentId  uuid.UUID       `json:"document_id"`
	Source      string          `json:"source"`
	Suggestions []TagSuggestion `json:"suggestions"`
}

type TagSuggestion struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Category   string  `json:"category"`
}
