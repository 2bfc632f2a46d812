// Package packdoc renders a strategy pack as PDF and Word documents.
package packdoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradie-recovery-be/pkg/strategy"
)

type Input struct {
	CaseID      string
	CaseNumber  string
	GeneratedAt time.Time
	Strategy    strategy.Strategy
}

type table struct {
	Header []string
	Widths []float64 // mm
	Rows   [][]string
}

type section struct {
	Title      string
	Paragraphs []string
	Bullets    []string
	Table      *table
}

// FileName is unique per case and millisecond, not content-addressed.
func FileName(caseID, ext string, now time.Time) string {
	return fmt.Sprintf("strategy-pack-%s-%d.%s", caseID, now.UnixMilli(), strings.TrimPrefix(ext, "."))
}

func coverLines(in Input) (title string, lines []string) {
	s := in.Strategy
	lines = []string{
		"Prepared for " + s.ClientName,
		"Case " + in.CaseNumber,
		"Amount in dispute: " + FormatAUD(float64(s.Amount)),
		"Generated " + in.GeneratedAt.Format("2 January 2006"),
	}
	return s.CaseTitle, lines
}

func buildSections(in Input) []section {
	s := in.Strategy

	steps := make([]string, 0, len(s.SecurityOfPaymentAct.Steps))
	for _, st := range s.SecurityOfPaymentAct.Steps {
		steps = append(steps, fmt.Sprintf("%d. %s (%s): %s", st.Step, st.Title, st.Timeframe, st.Description))
	}

	rows := make([][]string, 0, len(s.Timeline))
	for _, item := range s.Timeline {
		rows = append(rows, []string{"Day " + strconv.Itoa(item.Day), item.Action, item.Deadline})
	}

	applicability := "Likely applies"
	if !s.SecurityOfPaymentAct.Applicable {
		applicability = "May not apply"
	}

	return []section{
		{
			Title: "Purpose of this pack",
			Paragraphs: []string{
				"This pack sets out a step by step plan to recover money owed to you for work you have completed. It explains your statutory rights, the deadlines that matter and what it is likely to cost.",
				"It is general information prepared from the details you provided. It is not legal advice about your particular circumstances.",
			},
		},
		{Title: "Welcome", Paragraphs: []string{s.WelcomeMessage}},
		{
			Title: "Case analysis",
			Paragraphs: []string{
				fmt.Sprintf("Issue: %s", s.IssueType),
				s.Description,
				s.LegalAnalysis,
				"Risk assessment: " + s.RiskAssessment,
			},
		},
		{
			Title:      "Security of payment process",
			Paragraphs: []string{fmt.Sprintf("%s. %s", applicability, s.SecurityOfPaymentAct.Reasoning)},
			Bullets:    steps,
		},
		{
			Title: "Timeline",
			Table: &table{
				Header: []string{"When", "Action", "Deadline"},
				Widths: []float64{25, 105, 40},
				Rows:   rows,
			},
		},
		{
			Title: "Costs and likely recovery",
			Bullets: []string{
				"Adjudication application fee: " + s.CostEstimate.AdjudicationFee,
				"Adjudicator's fees: " + s.CostEstimate.AdjudicatorFee,
				"Total estimated cost: " + s.CostEstimate.TotalEstimatedCost,
				"Likelihood of recovery: " + s.CostEstimate.RecoveryLikelihood,
			},
		},
		{
			Title:      "Next steps and enforcement",
			Paragraphs: append(strings.Split(s.NextSteps, "\n"), s.EnforcementInfo),
		},
		{
			Title:      "Documents to attach",
			Paragraphs: []string{"Collect these before you serve your payment claim:"},
			Bullets:    s.Attachments,
		},
	}
}

func footerText(in Input) string {
	return fmt.Sprintf("Strategy pack %s | General information only, not legal advice", in.CaseNumber)
}

// FormatAUD renders 12500 as "$12,500.00".
func FormatAUD(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
