package factory

import (
	"testing"

	"tradie-recovery-be/pkg/llm/ollama"
	"tradie-recovery-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Settings{Provider: "openai"})
	require.NoError(t, err)
	assert.Nil(t, p, "no key means no provider")

	p, err = NewLLMProvider(Settings{Provider: "openai", OpenAIKey: "sk", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider(Settings{Provider: "huggingface", HuggingFaceKey: "hf"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider(Settings{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.OllamaProvider{}, p)

	_, err = NewLLMProvider(Settings{Provider: "gemini"})
	assert.Error(t, err)
}
