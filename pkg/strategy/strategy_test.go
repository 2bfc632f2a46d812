package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tradie-recovery-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
	err   error
	delay time.Duration
	opts  llm.Options
	calls int
}

func (s *stubProvider) Chat(ctx context.Context, _ []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	s.opts = *llm.Apply(llm.Options{}, options...)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

var facts = Facts{
	ClientName:  "A Tradie",
	CaseTitle:   "Unpaid switchboard upgrade",
	IssueType:   "unpaid",
	Description: "Builder has not paid the final invoice",
	State:       "nsw",
	Amount:      12500,
}

func assertComplete(t *testing.T, s Strategy) {
	t.Helper()
	for name, v := range map[string]string{
		"clientName":      s.ClientName,
		"caseTitle":       s.CaseTitle,
		"issueType":       s.IssueType,
		"description":     s.Description,
		"welcomeMessage":  s.WelcomeMessage,
		"legalAnalysis":   s.LegalAnalysis,
		"reasoning":       s.SecurityOfPaymentAct.Reasoning,
		"adjudication":    s.CostEstimate.AdjudicationFee,
		"adjudicator":     s.CostEstimate.AdjudicatorFee,
		"likelihood":      s.CostEstimate.RecoveryLikelihood,
		"total":           s.CostEstimate.TotalEstimatedCost,
		"riskAssessment":  s.RiskAssessment,
		"enforcementInfo": s.EnforcementInfo,
		"nextSteps":       s.NextSteps,
	} {
		assert.NotEmpty(t, strings.TrimSpace(v), name)
	}
	assert.NotEmpty(t, s.SecurityOfPaymentAct.Steps)
	assert.NotEmpty(t, s.Timeline)
	assert.NotEmpty(t, s.Attachments)
}

func TestGenerateWithoutProviderFallsBack(t *testing.T) {
	s, src := NewGenerator(nil, 0).Generate(context.Background(), facts)
	assert.Equal(t, SourceFallback, src)
	assertComplete(t, s)
	assert.Contains(t, s.LegalAnalysis, "Security of Payment Act 1999 (NSW)")
	assert.Equal(t, Money(12500), s.Amount)
}

func TestGenerateProviderFailuresFallBack(t *testing.T) {
	cases := map[string]*stubProvider{
		"error":     {err: errors.New("connection refused")},
		"malformed": {reply: `{"clientName": "x", "timeline": [`},
		"prose":     {reply: "Sorry, I can't help with that."},
		"empty":     {reply: ""},
		"timeout":   {reply: "{}", delay: time.Second},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			s, src := NewGenerator(p, 50*time.Millisecond).Generate(context.Background(), facts)
			assert.Equal(t, SourceFallback, src)
			assertComplete(t, s)
		})
	}
}

func TestGenerateBackfillsPartialOutput(t *testing.T) {
	p := &stubProvider{reply: "```json\n" + `{
		"legalAnalysis": "Custom analysis",
		"amount": "$9,800.50",
		"securityOfPaymentAct": {"applicable": false, "steps": []},
		"timeline": [{"day": 3, "action": "Call the builder"}, {"day": 5, "action": ""}],
		"costEstimate": {"adjudicatorFee": "$2,000"},
		"nextSteps": ["Send claim", "Wait"],
		"attachments": []
	}` + "\n```"}

	s, src := NewGenerator(p, time.Second).Generate(context.Background(), facts)
	require.Equal(t, SourceAI, src)
	assertComplete(t, s)

	assert.Equal(t, "Custom analysis", s.LegalAnalysis)
	assert.InDelta(t, 9800.50, float64(s.Amount), 0.001)
	assert.False(t, s.SecurityOfPaymentAct.Applicable)
	assert.Equal(t, fallbackSteps, s.SecurityOfPaymentAct.Steps)
	assert.Equal(t, []TimelineItem{{Day: 3, Action: "Call the builder"}}, s.Timeline)
	assert.Equal(t, "$2,000", s.CostEstimate.AdjudicatorFee)
	assert.Equal(t, fallbackCosts.AdjudicationFee, s.CostEstimate.AdjudicationFee)
	assert.Equal(t, "Send claim\nWait", s.NextSteps)
	assert.Equal(t, fallbackAttachments, s.Attachments)
	assert.Equal(t, facts.ClientName, s.ClientName)

	assert.InDelta(t, 0.2, p.opts.Temperature, 1e-9)
	assert.True(t, p.opts.JSON)
}

func TestFallbackDoesNotShareSlices(t *testing.T) {
	a := Fallback(facts)
	a.Timeline[0].Action = "mutated"
	a.Attachments[0] = "mutated"
	b := Fallback(facts)
	assert.NotEqual(t, "mutated", b.Timeline[0].Action)
	assert.NotEqual(t, "mutated", b.Attachments[0])
}

func TestBuildPromptNamesStateAct(t *testing.T) {
	prompt := BuildPrompt(Facts{CaseTitle: "t", IssueType: "i", Description: "d", State: "Queensland"})
	assert.Contains(t, prompt, "Building Industry Fairness (Security of Payment) Act 2017 (Qld)")
	assert.Contains(t, prompt, `"securityOfPaymentAct"`)

	unknown := BuildPrompt(Facts{CaseTitle: "t", State: "Bali"})
	assert.Contains(t, unknown, "state is unknown")
}

func TestNormalizeState(t *testing.T) {
	s, ok := NormalizeState(" vic ")
	assert.True(t, ok)
	assert.Equal(t, "VIC", s)

	s, ok = NormalizeState("Northern Territory")
	assert.True(t, ok)
	assert.Equal(t, "NT", s)

	_, ok = NormalizeState("Auckland")
	assert.False(t, ok)
}

func TestReviewContract(t *testing.T) {
	c := ContractFacts{Title: "Kitchen fit-out", Parties: []string{"Acme Builders", "Jo Sparky"}, Value: 40000}

	review, src := NewGenerator(nil, 0).ReviewContract(context.Background(), c)
	assert.Equal(t, SourceFallback, src)
	assert.Contains(t, review.Summary, "Acme Builders and Jo Sparky")
	assert.NotEmpty(t, review.Risks)

	p := &stubProvider{reply: `{"summary": "Fine", "risks": ["Pay when paid clause"]}`}
	review, src = NewGenerator(p, time.Second).ReviewContract(context.Background(), c)
	assert.Equal(t, SourceAI, src)
	assert.Equal(t, "Fine", review.Summary)
	assert.Equal(t, []string{"Pay when paid clause"}, review.Risks)
	assert.NotEmpty(t, review.Recommendations)
	assert.NotEmpty(t, review.PaymentTerms)
}
