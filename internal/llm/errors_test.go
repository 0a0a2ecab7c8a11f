package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"connection reset", errors.New("connection reset by peer"), false},
		{"groq rate limit", errors.New("Rate limit reached for model llama-3.3-70b-versatile"), true},
		{"openai quota", errors.New("You exceeded your current quota: quota exceeded"), true},
		{"anthropic credits", errors.New("Your credit balance is too low"), true},
		{"billing", errors.New("billing hard limit reached"), true},
		{"bad key", errors.New("Invalid API Key"), true},
		{"bedrock auth", errors.New("UnrecognizedClientException: authentication failed"), true},
		{"unauthorized", errors.New("unauthorized"), true},
		{"http 401", errors.New("API returned unexpected status code: 401"), true},
		{"http 403", errors.New("status 403"), true},
		{"wrapped", fmt.Errorf("summarize: %w", errors.New("credit balance too low")), true},
		{"http 404", errors.New("status 404: model not found"), false},
		{"deadline", errors.New("context deadline exceeded"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, isFatalAPIError(tt.err))

			wrapped := wrapFatalError(tt.err)
			assert.Equal(t, tt.fatal, errors.Is(wrapped, ErrFatalAPI))
			if !tt.fatal {
				assert.Equal(t, tt.err, wrapped)
			} else {
				assert.ErrorIs(t, wrapped, tt.err)
			}
		})
	}
}
