package dto

import (
	"time"

	"github.com/google/uuid"
)

type CalendarConnectResponse struct {
	URL string `json:"url"`
}

type CalendarCallbackRequest struct {
	Code  string `query:"code" validate:"required"`
	State string `query:"state" validate:"required"`
}

type CalendarIntegrationResponse struct {
	Id          uuid.UUID  `json:"id"`
	Provider    string     `json:"provider"`
	CalendarId  string     `json:"calendar_id"`
	TokenExpiry *time.Time `json:"token_expiry,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateCalendarEventRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      time.Time  `json:"ends_at" validate:"required,gtfield=StartsAt"`
	CaseId      *uuid.UUID `json:"case_id"`
	Provider    string     `json:"provider" validate:"omitempty,oneof=google outlook"`
}

type CalendarEventResponse struct {
	Id            uuid.UUID  `json:"id"`
	IntegrationId *uuid.UUID `json:"integration_id,omitempty"`
	CaseId        *uuid.UUID `json:"case_id,omitempty"`
	ExternalId    string     `json:"external_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	StartsAt      time.Time  `json:"starts_at"`
	EndsAt        time.Time  `json:"ends_at"`
}
