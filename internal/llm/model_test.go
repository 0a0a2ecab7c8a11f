package llm

import (
	"context"
	"testing"

	"github.com/raphaelgruber/railvoice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelProviders(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		wantModel string
		wantErr   string
	}{
		{"groq default model", config.Config{LLMProvider: ProviderGroq, GroqAPIKey: "gsk"}, "llama-3.3-70b-versatile", ""},
		{"groq without key", config.Config{LLMProvider: ProviderGroq}, "", "Groq API key required"},
		{"openai override", config.Config{LLMProvider: ProviderOpenAI, OpenAIAPIKey: "sk", LLMModel: "gpt-4o"}, "gpt-4o", ""},
		{"openai without key", config.Config{LLMProvider: ProviderOpenAI}, "", "OpenAI API key required"},
		{"anthropic without key", config.Config{LLMProvider: ProviderAnthropic}, "", "Anthropic API key required"},
		{"ollama", config.Config{LLMProvider: ProviderOllama, OllamaHost: "http://localhost:11434"}, "llama3.2", ""},
		{"unknown", config.Config{LLMProvider: "watson"}, "", "unsupported LLM provider: watson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(context.Background(), tt.cfg, nil, nil)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, m.Model())
		})
	}
}
