package strategy

import (
	"fmt"
	"strings"
)

var actsByState = map[string]string{
	"NSW": "Building and Construction Industry Security of Payment Act 1999 (NSW)",
	"VIC": "Building and Construction Industry Security of Payment Act 2002 (Vic)",
	"QLD": "Building Industry Fairness (Security of Payment) Act 2017 (Qld)",
	"WA":  "Building and Construction Industry (Security of Payment) Act 2021 (WA)",
	"SA":  "Building and Construction Industry Security of Payment Act 2009 (SA)",
	"TAS": "Building and Construction Industry Security of Payment Act 2009 (Tas)",
	"ACT": "Building and Construction Industry (Security of Payment) Act 2009 (ACT)",
	"NT":  "Construction Contracts (Security of Payments) Act 2004 (NT)",
}

var stateAliases = map[string]string{
	"NEW SOUTH WALES":              "NSW",
	"VICTORIA":                     "VIC",
	"QUEENSLAND":                   "QLD",
	"WESTERN AUSTRALIA":            "WA",
	"SOUTH AUSTRALIA":              "SA",
	"TASMANIA":                     "TAS",
	"AUSTRALIAN CAPITAL TERRITORY": "ACT",
	"NORTHERN TERRITORY":           "NT",
}

// NormalizeState maps "nsw" or "New South Wales" to "NSW". Unknown input
// comes back upper-cased with ok=false.
func NormalizeState(state string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(state))
	if alias, ok := stateAliases[s]; ok {
		s = alias
	}
	_, ok := actsByState[s]
	return s, ok
}

func ActForState(state string) (string, bool) {
	s, ok := NormalizeState(state)
	if !ok {
		return "", false
	}
	return actsByState[s], true
}

const systemPrompt = `You are an Australian construction payments specialist helping tradespeople recover unpaid money.
You answer with a single JSON object and nothing else.`

const responseShape = `{
  "clientName": string,
  "caseTitle": string,
  "amount": number,
  "issueType": string,
  "description": string,
  "welcomeMessage": string,
  "legalAnalysis": string,
  "securityOfPaymentAct": {
    "applicable": boolean,
    "reasoning": string,
    "steps": [{"step": number, "title": string, "description": string, "timeframe": string}]
  },
  "timeline": [{"day": number, "action": string, "deadline": string}],
  "costEstimate": {"adjudicationFee": string, "adjudicatorFee": string, "recoveryLikelihood": string, "totalEstimatedCost": string},
  "riskAssessment": string,
  "enforcementInfo": string,
  "nextSteps": string,
  "attachments": [string]
}`

// BuildPrompt embeds the case facts and the legislation for the state.
func BuildPrompt(f Facts) string {
	var b strings.Builder

	b.WriteString("Prepare a payment recovery strategy for this matter.\n\n")
	b.WriteString("CASE FACTS\n")
	fmt.Fprintf(&b, "- Client name: %s\n", nonEmpty(f.ClientName, "not provided"))
	fmt.Fprintf(&b, "- Case title: %s\n", f.CaseTitle)
	fmt.Fprintf(&b, "- Issue type: %s\n", f.IssueType)
	if f.Trade != "" {
		fmt.Fprintf(&b, "- Trade: %s\n", f.Trade)
	}
	fmt.Fprintf(&b, "- Amount owed: $%.2f AUD\n", f.Amount)
	fmt.Fprintf(&b, "- Description: %s\n\n", f.Description)

	b.WriteString("LEGAL FRAMEWORK\n")
	if act, ok := ActForState(f.State); ok {
		state, _ := NormalizeState(f.State)
		fmt.Fprintf(&b, "The work was performed in %s. Apply the %s, including its payment claim, payment schedule, adjudication and enforcement provisions and their statutory timeframes.\n\n", state, act)
	} else {
		b.WriteString("The state is unknown. Describe the process under Australian security of payment legislation generally and tell the client to confirm which Act applies.\n\n")
	}

	b.WriteString("Respond with JSON exactly in this shape:\n")
	b.WriteString(responseShape)
	b.WriteString("\n\nTimeline days count from today. Keep advice practical and in plain English.")
	return b.String()
}
