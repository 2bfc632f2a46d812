// Package strategy turns case facts into a fixed-shape dispute strategy.
// Generation goes through an LLM when one is configured; every path that
// cannot produce a complete object ends with static fallback content.
package strategy

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Facts is the input to strategy generation.
type Facts struct {
	ClientName  string  `json:"clientName"`
	CaseTitle   string  `json:"caseTitle" validate:"required"`
	IssueType   string  `json:"issueType" validate:"required"`
	Description string  `json:"description" validate:"required"`
	State       string  `json:"state"`
	Trade       string  `json:"trade"`
	Amount      float64 `json:"amount"`
}

type Step struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timeframe   string `json:"timeframe"`
}

type SecurityOfPaymentAct struct {
	Applicable bool   `json:"applicable"`
	Reasoning  string `json:"reasoning"`
	Steps      []Step `json:"steps"`
}

type TimelineItem struct {
	Day      int    `json:"day"`
	Action   string `json:"action"`
	Deadline string `json:"deadline,omitempty"`
}

type CostEstimate struct {
	AdjudicationFee    string `json:"adjudicationFee"`
	AdjudicatorFee     string `json:"adjudicatorFee"`
	RecoveryLikelihood string `json:"recoveryLikelihood"`
	TotalEstimatedCost string `json:"totalEstimatedCost"`
}

// Strategy is always returned complete: no empty strings, no nil slices.
type Strategy struct {
	ClientName           string               `json:"clientName"`
	CaseTitle            string               `json:"caseTitle"`
	Amount               Money                `json:"amount"`
	IssueType            string               `json:"issueType"`
	Description          string               `json:"description"`
	WelcomeMessage       string               `json:"welcomeMessage"`
	LegalAnalysis        string               `json:"legalAnalysis"`
	SecurityOfPaymentAct SecurityOfPaymentAct `json:"securityOfPaymentAct"`
	Timeline             []TimelineItem       `json:"timeline"`
	CostEstimate         CostEstimate         `json:"costEstimate"`
	RiskAssessment       string               `json:"riskAssessment"`
	EnforcementInfo      string               `json:"enforcementInfo"`
	NextSteps            string               `json:"nextSteps"`
	Attachments          []string             `json:"attachments"`
}

// Money accepts JSON numbers and strings like "$12,500.00".
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*m = Money(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.NewReplacer("$", "", ",", "", "AUD", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// unparseable amounts are treated as missing
		return nil
	}
	*m = Money(f)
	return nil
}
