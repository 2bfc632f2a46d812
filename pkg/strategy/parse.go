package strategy

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object in response")

// ExtractJSON pulls the outermost object out of a model response that may
// be wrapped in code fences or prose.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

type rawSOPA struct {
	Applicable *bool   `json:"applicable"`
	Reasoning  *string `json:"reasoning"`
	Steps      []Step  `json:"steps"`
}

type rawCosts struct {
	AdjudicationFee    *string `json:"adjudicationFee"`
	AdjudicatorFee     *string `json:"adjudicatorFee"`
	RecoveryLikelihood *string `json:"recoveryLikelihood"`
	TotalEstimatedCost *string `json:"totalEstimatedCost"`
}

type rawStrategy struct {
	ClientName           *string         `json:"clientName"`
	CaseTitle            *string         `json:"caseTitle"`
	Amount               *Money          `json:"amount"`
	IssueType            *string         `json:"issueType"`
	Description          *string         `json:"description"`
	WelcomeMessage       *string         `json:"welcomeMessage"`
	LegalAnalysis        *string         `json:"legalAnalysis"`
	SecurityOfPaymentAct *rawSOPA        `json:"securityOfPaymentAct"`
	Timeline             []TimelineItem  `json:"timeline"`
	CostEstimate         *rawCosts       `json:"costEstimate"`
	RiskAssessment       *string         `json:"riskAssessment"`
	EnforcementInfo      *string         `json:"enforcementInfo"`
	NextSteps            json.RawMessage `json:"nextSteps"`
	Attachments          []string        `json:"attachments"`
}

// Parse decodes a model response and backfills every missing or empty
// field from Fallback(f). It fails only when no JSON object can be decoded.
func Parse(response string, f Facts) (Strategy, error) {
	body, err := ExtractJSON(response)
	if err != nil {
		return Strategy{}, err
	}

	var raw rawStrategy
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Strategy{}, err
	}

	out := Fallback(f)
	fill(&out.ClientName, raw.ClientName)
	fill(&out.CaseTitle, raw.CaseTitle)
	fill(&out.IssueType, raw.IssueType)
	fill(&out.Description, raw.Description)
	fill(&out.WelcomeMessage, raw.WelcomeMessage)
	fill(&out.LegalAnalysis, raw.LegalAnalysis)
	fill(&out.RiskAssessment, raw.RiskAssessment)
	fill(&out.EnforcementInfo, raw.EnforcementInfo)
	if raw.Amount != nil && *raw.Amount > 0 {
		out.Amount = *raw.Amount
	}

	if sopa := raw.SecurityOfPaymentAct; sopa != nil {
		if sopa.Applicable != nil {
			out.SecurityOfPaymentAct.Applicable = *sopa.Applicable
		}
		fill(&out.SecurityOfPaymentAct.Reasoning, sopa.Reasoning)
		if steps := cleanSteps(sopa.Steps); len(steps) > 0 {
			out.SecurityOfPaymentAct.Steps = steps
		}
	}

	if items := cleanTimeline(raw.Timeline); len(items) > 0 {
		out.Timeline = items
	}

	if c := raw.CostEstimate; c != nil {
		fill(&out.CostEstimate.AdjudicationFee, c.AdjudicationFee)
		fill(&out.CostEstimate.AdjudicatorFee, c.AdjudicatorFee)
		fill(&out.CostEstimate.RecoveryLikelihood, c.RecoveryLikelihood)
		fill(&out.CostEstimate.TotalEstimatedCost, c.TotalEstimatedCost)
	}

	if next := flattenText(raw.NextSteps); next != "" {
		out.NextSteps = next
	}

	if attachments := cleanStrings(raw.Attachments); len(attachments) > 0 {
		out.Attachments = attachments
	}

	return out, nil
}

func fill(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func cleanSteps(in []Step) []Step {
	out := make([]Step, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		s.Step = len(out) + 1
		if s.Description == "" {
			s.Description = s.Title
		}
		out = append(out, s)
	}
	return out
}

func cleanTimeline(in []TimelineItem) []TimelineItem {
	out := make([]TimelineItem, 0, len(in))
	for _, item := range in {
		if strings.TrimSpace(item.Action) == "" || item.Day < 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flattenText accepts nextSteps as a string or a list of strings.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(cleanStrings(list), "\n")
	}
	return ""
}
