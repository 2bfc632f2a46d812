package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type ContractFacts struct {
	Title   string   `json:"title"`
	Parties []string `json:"parties"`
	Value   float64  `json:"value"`
	Terms   string   `json:"terms"`
	State   string   `json:"state"`
}

type ContractReview struct {
	Summary         string   `json:"summary"`
	PaymentTerms    string   `json:"paymentTerms"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

const contractSystemPrompt = `You review Australian construction contracts for tradespeople and flag payment risks.
You answer with a single JSON object and nothing else.`

func FallbackContractReview(c ContractFacts) ContractReview {
	return ContractReview{
		Summary:      fmt.Sprintf("%s between %s valued at $%.2f.", nonEmpty(c.Title, "Contract"), partyList(c.Parties), c.Value),
		PaymentTerms: "Check that the contract sets a progress claim date, a payment due date and a reference date for each claim.",
		Risks: []string{
			"Payment terms longer than the statutory maximum are unenforceable but often still relied on by clients",
			"Pay-when-paid clauses have no effect under security of payment legislation",
			"Variations agreed verbally are hard to prove",
		},
		Recommendations: []string{
			"Record every variation in writing before starting the work",
			"Issue progress claims that reference the security of payment Act",
			"Keep dated photos and site diaries for each stage",
		},
	}
}

// ReviewContract never fails; it falls back like Generate.
func (g *Generator) ReviewContract(ctx context.Context, c ContractFacts) (ContractReview, Source) {
	fallback := FallbackContractReview(c)
	if !g.Enabled() {
		return fallback, SourceFallback
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Review this contract.\nTitle: %s\nParties: %s\nValue: $%.2f AUD\n", c.Title, partyList(c.Parties), c.Value)
	if act, ok := ActForState(c.State); ok {
		fmt.Fprintf(&b, "Governing legislation: %s\n", act)
	}
	fmt.Fprintf(&b, "Terms:\n%s\n\n", c.Terms)
	b.WriteString(`Respond as {"summary": string, "paymentTerms": string, "risks": [string], "recommendations": [string]}`)

	resp, err := g.Complete(ctx, contractSystemPrompt, b.String())
	if err != nil {
		log.Printf("[STRATEGY] contract review failed, using fallback: %v", err)
		return fallback, SourceFallback
	}
	body, err := ExtractJSON(resp)
	if err != nil {
		return fallback, SourceFallback
	}

	var out ContractReview
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return fallback, SourceFallback
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = fallback.Summary
	}
	if strings.TrimSpace(out.PaymentTerms) == "" {
		out.PaymentTerms = fallback.PaymentTerms
	}
	if out.Risks = cleanStrings(out.Risks); len(out.Risks) == 0 {
		out.Risks = fallback.Risks
	}
	if out.Recommendations = cleanStrings(out.Recommendations); len(out.Recommendations) == 0 {
		out.Recommendations = fallback.Recommendations
	}
	return out, SourceAI
}

func partyList(parties []string) string {
	if p := cleanStrings(parties); len(p) > 0 {
		return strings.Join(p, " and ")
	}
	return "the parties"
}
