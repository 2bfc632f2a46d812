package factory

import (
	"fmt"
	"strings"

	"tradie-recovery-be/pkg/llm"
	"tradie-recovery-be/pkg/llm/ollama"
	"tradie-recovery-be/pkg/llm/openai"
)

const huggingFaceRouterURL = "https://router.huggingface.co/v1"

type Settings struct {
	Provider       string
	Model          string
	OpenAIKey      string
	OpenAIBaseURL  string
	HuggingFaceKey string
	OllamaBaseURL  string
}

// NewLLMProvider returns nil, nil when the selected provider has no
// credentials. Callers treat a nil provider as "use fallback content".
func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch strings.ToLower(s.Provider) {
	case "", "openai":
		if s.OpenAIKey == "" {
			return nil, nil
		}
		return openai.NewProvider(s.OpenAIKey, s.OpenAIBaseURL, s.Model), nil
	case "huggingface":
		if s.HuggingFaceKey == "" {
			return nil, nil
		}
		return openai.NewProvider(s.HuggingFaceKey, huggingFaceRouterURL, s.Model), nil
	case "ollama":
		return ollama.NewOllamaProvider(s.OllamaBaseURL, s.Model), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
