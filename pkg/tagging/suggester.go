package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"tradie-recovery-be/pkg/strategy"
)

type Tag struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type Suggestion struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Category   string  `json:"category"`
}

// DefaultVocabulary is seeded into the tag table on startup.
var DefaultVocabulary = []Tag{
	{Name: "Invoice", Category: "financial", Description: "Tax invoice issued to the client", Color: "#2563eb"},
	{Name: "Receipt", Category: "financial", Description: "Proof of payment or purchase", Color: "#0891b2"},
	{Name: "Quote", Category: "financial", Description: "Quote or estimate given before work", Color: "#7c3aed"},
	{Name: "Contract", Category: "legal", Description: "Signed contract or written agreement", Color: "#16a34a"},
	{Name: "Variation", Category: "legal", Description: "Variation request or approval", Color: "#ca8a04"},
	{Name: "Payment Claim", Category: "legal", Description: "Payment claim under security of payment legislation", Color: "#dc2626"},
	{Name: "Payment Schedule", Category: "legal", Description: "Payment schedule from the respondent", Color: "#ea580c"},
	{Name: "Adjudication", Category: "legal", Description: "Adjudication application or determination", Color: "#9333ea"},
	{Name: "Correspondence", Category: "communication", Description: "Emails, letters and messages", Color: "#64748b"},
	{Name: "Photo Evidence", Category: "evidence", Description: "Site photos and completion evidence", Color: "#0d9488"},
	{Name: "Strategy Pack", Category: "generated", Description: "Generated strategy pack document", Color: "#1e293b"},
	{Name: "Other", Category: "general", Description: "Anything else", Color: "#94a3b8"},
}

type keywordRule struct {
	keywords   []string
	tag        string
	confidence float64
}

var rules = []keywordRule{
	{[]string{"strategy-pack", "strategy_pack"}, "Strategy Pack", 0.95},
	{[]string{"invoice", "inv-", "inv_"}, "Invoice", 0.8},
	{[]string{"receipt"}, "Receipt", 0.8},
	{[]string{"quote", "estimate"}, "Quote", 0.75},
	{[]string{"contract", "agreement"}, "Contract", 0.8},
	{[]string{"variation"}, "Variation", 0.75},
	{[]string{"payment-claim", "payment_claim", "claim"}, "Payment Claim", 0.7},
	{[]string{"schedule"}, "Payment Schedule", 0.65},
	{[]string{"adjudicat"}, "Adjudication", 0.8},
	{[]string{"email", "letter", "correspondence", "message"}, "Correspondence", 0.6},
	{[]string{"photo", "img_", "site"}, "Photo Evidence", 0.6},
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".heic": true, ".webp": true, ".gif": true}

// Completer is satisfied by *strategy.Generator.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Suggester struct {
	ai Completer
}

func NewSuggester(ai Completer) *Suggester {
	return &Suggester{ai: ai}
}

// Suggest ranks vocabulary tags for a document. It never returns an empty list.
func (s *Suggester) Suggest(ctx context.Context, filename, content string, vocabulary []Tag) ([]Suggestion, strategy.Source) {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	if s.ai != nil && s.ai.Enabled() {
		if out, err := s.suggestAI(ctx, filename, content, vocabulary); err == nil && len(out) > 0 {
			return out, strategy.SourceAI
		} else if err != nil {
			log.Printf("[TAGGING] ai suggestion failed, using keyword rules: %v", err)
		}
	}
	return FallbackSuggestions(filename, vocabulary), strategy.SourceFallback
}

const taggingSystemPrompt = `You classify documents uploaded by Australian tradespeople for payment disputes.
You answer with a single JSON object and nothing else.`

func (s *Suggester) suggestAI(ctx context.Context, filename, content string, vocabulary []Tag) ([]Suggestion, error) {
	names := make([]string, len(vocabulary))
	for i, t := range vocabulary {
		names[i] = t.Name
	}
	if len(content) > 2000 {
		content = content[:2000]
	}

	prompt := fmt.Sprintf(`Suggest up to 3 tags for this document.
Filename: %s
Content excerpt: %s
Allowed tags: %s
Respond as {"suggestions": [{"tag": string, "confidence": number between 0 and 1, "reasoning": string}]}`,
		filename, nonEmpty(content, "(not available)"), strings.Join(names, ", "))

	resp, err := s.ai.Complete(ctx, taggingSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	body, err := strategy.ExtractJSON(resp)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, err
	}
	return normalize(parsed.Suggestions, vocabulary), nil
}

// normalize keeps known tags only, dedupes, clamps and sorts by confidence.
func normalize(in []Suggestion, vocabulary []Tag) []Suggestion {
	byName := make(map[string]Tag, len(vocabulary))
	for _, t := range vocabulary {
		byName[strings.ToLower(t.Name)] = t
	}

	seen := map[string]bool{}
	out := make([]Suggestion, 0, len(in))
	for _, sg := range in {
		tag, ok := byName[strings.ToLower(strings.TrimSpace(sg.Tag))]
		if !ok || seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		sg.Tag = tag.Name
		sg.Category = tag.Category
		sg.Confidence = clamp(sg.Confidence)
		out = append(out, sg)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func FallbackSuggestions(filename string, vocabulary []Tag) []Suggestion {
	name := strings.ToLower(filepath.Base(filename))
	var out []Suggestion
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(name, kw) {
				out = append(out, Suggestion{
					Tag:        r.tag,
					Confidence: r.confidence,
					Reasoning:  fmt.Sprintf("Filename contains %q", kw),
				})
				break
			}
		}
	}
	if imageExts[filepath.Ext(name)] {
		out = append(out, Suggestion{Tag: "Photo Evidence", Confidence: 0.5, Reasoning: "Image file"})
	}

	out = normalize(out, vocabulary)
	if len(out) == 0 {
		out = normalize([]Suggestion{{Tag: "Other", Confidence: 0.3, Reasoning: "No filename keywords matched"}}, vocabulary)
	}
	return out
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func nonEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
