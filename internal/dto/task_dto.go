package dto

import "github.com/google/uuid"

// Task payloads published on the watermill task topics.

type WelcomeEmailTask struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type ApplicationStatusEmailTask struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

type CaseAnalyzeTask struct {
	CaseId uuid.UUID `json:"case_id"`
}

type DocumentReadyEmailTask struct {
	UserId     uuid.UUID `json:"user_id"`
	CaseNumber string    `json:"case_number"`
}
