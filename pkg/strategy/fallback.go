package strategy

import (
	"fmt"
	"strings"
)

var fallbackSteps = []Step{
	{
		Step:        1,
		Title:       "Serve a payment claim",
		Description: "Issue a written payment claim that identifies the work carried out, states the amount claimed and states that it is made under the security of payment legislation.",
		Timeframe:   "Day 0",
	},
	{
		Step:        2,
		Title:       "Wait for the payment schedule",
		Description: "The respondent must reply with a payment schedule stating what they will pay and why. If they pay nothing and serve no schedule, the full amount becomes due.",
		Timeframe:   "Within 10 business days",
	},
	{
		Step:        3,
		Title:       "Lodge an adjudication application",
		Description: "If the schedule is short, late or missing, apply to an authorised nominating authority with your claim, the schedule and your supporting evidence.",
		Timeframe:   "Within 10 business days of the schedule",
	},
	{
		Step:        4,
		Title:       "Adjudicator's determination",
		Description: "An independent adjudicator decides the amount payable on the documents. The determination is binding on an interim basis.",
		Timeframe:   "Usually 10 business days after acceptance",
	},
	{
		Step:        5,
		Title:       "Enforce the determination",
		Description: "If the determined amount is not paid, obtain an adjudication certificate and file it in court as a judgment debt.",
		Timeframe:   "After the payment due date passes",
	},
}

var fallbackTimeline = []TimelineItem{
	{Day: 0, Action: "Serve the payment claim on the respondent", Deadline: "Today"},
	{Day: 10, Action: "Payment schedule due from the respondent", Deadline: "10 business days"},
	{Day: 20, Action: "Lodge adjudication application if unpaid or disputed", Deadline: "10 business days after schedule"},
	{Day: 30, Action: "Adjudicator's determination expected"},
	{Day: 45, Action: "Register the adjudication certificate and enforce if still unpaid"},
}

var fallbackCosts = CostEstimate{
	AdjudicationFee:    "$50 - $800 lodgement fee depending on the nominating authority",
	AdjudicatorFee:     "$1,500 - $5,000 depending on the size and complexity of the claim",
	RecoveryLikelihood: "Moderate to high where the work, invoices and contract terms are well documented",
	TotalEstimatedCost: "$2,000 - $6,000",
}

var fallbackAttachments = []string{
	"Signed contract, quote or written acceptance",
	"Tax invoices and any payment claims already issued",
	"Variations and written approvals",
	"Correspondence with the client about payment",
	"Site photos and evidence of completed work",
}

// Fallback returns complete static content for f.
func Fallback(f Facts) Strategy {
	client := nonEmpty(f.ClientName, "Client")
	title := nonEmpty(f.CaseTitle, "Payment dispute")
	act, known := ActForState(f.State)

	legal := "The security of payment legislation in your state gives contractors and subcontractors a statutory right to progress payments and a fast adjudication process when payment is withheld."
	reasoning := "Security of payment legislation applies to most construction work performed under a contract in Australia. Confirm the work and the contract fall within the Act in your state."
	if known {
		legal = fmt.Sprintf("Your claim is likely to fall under the %s. The Act gives you a statutory right to progress payments and access to rapid adjudication when a payment claim is not paid in full.", act)
		reasoning = fmt.Sprintf("The %s applies to construction work and related goods and services supplied under a construction contract in %s.", act, strings.ToUpper(strings.TrimSpace(f.State)))
	}

	return Strategy{
		ClientName:     client,
		CaseTitle:      title,
		Amount:         Money(f.Amount),
		IssueType:      nonEmpty(f.IssueType, "unpaid invoice"),
		Description:    nonEmpty(f.Description, "No description provided."),
		WelcomeMessage: fmt.Sprintf("Hi %s, this strategy pack sets out a practical path to recover what you are owed for %q.", client, title),
		LegalAnalysis:  legal,
		SecurityOfPaymentAct: SecurityOfPaymentAct{
			Applicable: true,
			Reasoning:  reasoning,
			Steps:      append([]Step(nil), fallbackSteps...),
		},
		Timeline:        append([]TimelineItem(nil), fallbackTimeline...),
		CostEstimate:    fallbackCosts,
		RiskAssessment:  "The main risks are missing statutory deadlines, an incomplete payment claim and the respondent becoming insolvent. Keep every document and serve claims in writing.",
		EnforcementInfo: "An unpaid adjudicated amount can be registered as a judgment debt, after which enforcement options include garnishee orders, seizure of assets and winding-up proceedings.",
		NextSteps:       "Gather your contract and invoices, prepare and serve a payment claim that references the Act, and diarise the payment schedule deadline.",
		Attachments:     append([]string(nil), fallbackAttachments...),
	}
}

func nonEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
