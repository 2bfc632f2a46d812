package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string
type CaseStatus string
type ContractStatus string
type AnalysisStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"

	CaseActive   CaseStatus = "active"
	CaseResolved CaseStatus = "resolved"
	CaseOnHold   CaseStatus = "on_hold"

	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"

	AnalysisFallback  AnalysisStatus = "fallback"
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
)

type Application struct {
	Id           uuid.UUID
	UserId       *uuid.UUID
	FullName     string
	Email        string
	Phone        string
	BusinessName string
	Trade        string
	State        string
	IssueType    string
	Description  string
	Amount       *float64
	IssueDate    *time.Time
	Status       ApplicationStatus
	ReviewedBy   *uuid.UUID
	ReviewedAt   *time.Time
	ReviewNotes  string
	AiAnalysis   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Case struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	CaseNumber        string
	Title             string
	Status            CaseStatus
	IssueType         string
	Amount            float64
	Description       string
	Intake            json.RawMessage
	AiAnalysis        json.RawMessage
	AnalysisStatus    AnalysisStatus
	StrategyPack      json.RawMessage
	NextAction        string
	NextActionDue     *time.Time
	Progress          int
	MoodScore         *int
	MoodNote          string
	ResolutionMethod  string
	RecoveredAmount   *float64
	SatisfactionScore *int
	ClosedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Contract struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ContractNumber string
	Title          string
	Status         ContractStatus
	Parties        []string
	Value          float64
	Terms          string
	AiAnalysis     json.RawMessage
	NextAction     string
	NextActionDue  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type TimelineEvent struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	CaseId      *uuid.UUID
	ContractId  *uuid.UUID
	Title       string
	Description string
	EventDate   time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
