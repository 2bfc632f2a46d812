package tagging

import (
	"context"
	"errors"
	"testing"

	"tradie-recovery-be/pkg/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAI struct {
	reply string
	err   error
}

func (s stubAI) Enabled() bool { return true }

func (s stubAI) Complete(context.Context, string, string) (string, error) {
	return s.reply, s.err
}

func TestFallbackSuggestionsFromFilename(t *testing.T) {
	out := FallbackSuggestions("uploads/INV-2031 final invoice.pdf", DefaultVocabulary)
	require.NotEmpty(t, out)
	assert.Equal(t, "Invoice", out[0].Tag)
	assert.Equal(t, "financial", out[0].Category)

	photo := FallbackSuggestions("IMG_0042.jpg", DefaultVocabulary)
	tags := []string{}
	for _, s := range photo {
		tags = append(tags, s.Tag)
	}
	assert.Equal(t, []string{"Photo Evidence"}, tags, "duplicate tags collapse")

	other := FallbackSuggestions("scan.pdf", DefaultVocabulary)
	require.Len(t, other, 1)
	assert.Equal(t, "Other", other[0].Tag)
}

func TestSuggestUsesAIAndFiltersVocabulary(t *testing.T) {
	ai := stubAI{reply: `{"suggestions":[
		{"tag":"contract","confidence":0.7,"reasoning":"signature page"},
		{"tag":"Made Up","confidence":0.99},
		{"tag":"Variation","confidence":1.4,"reasoning":"variation form"}
	]}`}

	out, src := NewSuggester(ai).Suggest(context.Background(), "doc.pdf", "", nil)
	assert.Equal(t, strategy.SourceAI, src)
	require.Len(t, out, 2)
	assert.Equal(t, "Variation", out[0].Tag)
	assert.Equal(t, 1.0, out[0].Confidence)
	assert.Equal(t, "Contract", out[1].Tag)
	assert.Equal(t, "legal", out[1].Category)
}

func TestSuggestFallsBack(t *testing.T) {
	for name, ai := range map[string]Completer{
		"nil":      nil,
		"error":    stubAI{err: errors.New("down")},
		"no known": stubAI{reply: `{"suggestions":[{"tag":"Nope","confidence":1}]}`},
	} {
		t.Run(name, func(t *testing.T) {
			out, src := NewSuggester(ai).Suggest(context.Background(), "signed-contract.pdf", "", DefaultVocabulary)
			assert.Equal(t, strategy.SourceFallback, src)
			require.NotEmpty(t, out)
			assert.Equal(t, "Contract", out[0].Tag)
		})
	}
}
