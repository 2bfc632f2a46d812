package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CaseIntake is the multi-section intake form stored verbatim on the case.
type CaseIntake struct {
	Personal struct {
		FullName     string `json:"full_name"`
		Phone        string `json:"phone"`
		Email        string `json:"email" validate:"omitempty,email"`
		BusinessName string `json:"business_name"`
		ABN          string `json:"abn"`
	} `json:"personal"`
	Project struct {
		Address        string `json:"address"`
		Trade          string `json:"trade"`
		State          string `json:"state"`
		Description    string `json:"description"`
		StartDate      string `json:"start_date"`
		CompletionDate string `json:"completion_date"`
	} `json:"project"`
	Contract struct {
		HasWrittenContract bool    `json:"has_written_contract"`
		ContractValue      float64 `json:"contract_value" validate:"gte=0"`
		PaymentTerms       string  `json:"payment_terms"`
		VariationsAgreed   bool    `json:"variations_agreed"`
	} `json:"contract"`
	Payment struct {
		AmountOwed        float64 `json:"amount_owed" validate:"gte=0"`
		InvoiceNumber     string  `json:"invoice_number"`
		InvoiceDate       string  `json:"invoice_date"`
		DueDate           string  `json:"due_date"`
		PaymentClaimSent  bool    `json:"payment_claim_sent"`
		ScheduleReceived  bool    `json:"schedule_received"`
		PreviousPayments  float64 `json:"previous_payments" validate:"gte=0"`
		DebtorName        string  `json:"debtor_name"`
		DebtorContactInfo string  `json:"debtor_contact"`
	} `json:"payment"`
	LegalPreferences struct {
		PreferredMethod      string `json:"preferred_method"`
		WillingToAdjudicate  bool   `json:"willing_to_adjudicate"`
		WillingToGoToCourt   bool   `json:"willing_to_go_to_court"`
		BudgetForLegalAction string `json:"budget"`
	} `json:"legal_preferences"`
	DesiredOutcome string   `json:"desired_outcome"`
	RiskFlags      []string `json:"risk_flags"`
}

type CreateCaseRequest struct {
	Title         string      `json:"title" validate:"required,min=3"`
	IssueType     string      `json:"issue_type" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	Amount        float64     `json:"amount" validate:"gte=0"`
	ClientName    string      `json:"client_name"`
	State         string      `json:"state"`
	Trade         string      `json:"trade"`
	NextAction    string      `json:"next_action"`
	NextActionDue *time.Time  `json:"next_action_due"`
	Intake        *CaseIntake `json:"intake"`
}

// UpdateCaseRequest is a partial merge: nil fields are left untouched.
type UpdateCaseRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=3"`
	Status        *string    `json:"status" validate:"omitempty,oneof=active resolved on_hold"`
	IssueType     *string    `json:"issue_type"`
	Description   *string    `json:"description"`
	Amount        *float64   `json:"amount" validate:"omitempty,gte=0"`
	NextAction    *string    `json:"next_action"`
	NextActionDue *time.Time `json:"next_action_due"`
	Progress      *int       `json:"progress" validate:"omitempty,gte=0,lte=100"`
	MoodScore     *int       `json:"mood_score" validate:"omitempty,gte=1,lte=10"`
	MoodNote      *string    `json:"mood_note"`
}

type CloseCaseRequest struct {
	ResolutionMethod  string   `json:"resolution_method" validate:"required"`
	RecoveredAmount   *float64 `json:"recovered_amount" validate:"omitempty,gte=0"`
	SatisfactionScore *int     `json:"satisfaction_score" validate:"omitempty,gte=1,lte=5"`
}

type CaseListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=active resolved on_hold"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type CaseResponse struct {
	Id                uuid.UUID       `json:"id"`
	UserId            uuid.UUID       `json:"user_id"`
	CaseNumber        string          `json:"case_number"`
	Title             string          `json:"title"`
	Status            string          `json:"status"`
	IssueType         string          `json:"issue_type"`
	Amount            float64         `json:"amount"`
	Description       string          `json:"description"`
	Intake            json.RawMessage `json:"intake,omitempty"`
	AiAnalysis        json.RawMessage `json:"ai_analysis"`
	AnalysisStatus    string          `json:"analysis_status"`
	StrategyPack      json.RawMessage `json:"strategy_pack,omitempty"`
	NextAction        string          `json:"next_action,omitempty"`
	NextActionDue     *time.Time      `json:"next_action_due,omitempty"`
	Progress          int             `json:"progress"`
	MoodScore         *int            `json:"mood_score,omitempty"`
	MoodNote          string          `json:"mood_note,omitempty"`
	ResolutionMethod  string          `json:"resolution_method,omitempty"`
	RecoveredAmount   *float64        `json:"recovered_amount,omitempty"`
	SatisfactionScore *int            `json:"satisfaction_score,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// --- Timeline ---

type CreateTimelineEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" validate:"required"`
	Completed   bool      `json:"completed"`
}

type TimelineEventResponse struct {
	Id          uuid.UUID  `json:"id"`
	CaseId      *uuid.UUID `json:"case_id,omitempty"`
	ContractId  *uuid.UUID `json:"contract_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	EventDate   time.Time  `json:"event_date"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// --- Strategy ---

type StrategyPackResponse struct {
	Case      CaseResponse       `json:"case"`
	Documents []DocumentResponse `json:"documents"`
	Source    string             `json:"source"`
}
