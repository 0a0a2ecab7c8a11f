package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/models"
)

// Messages returned instead of a summary. Summarization never fails a
// request; the caller still has the resolved ticket.
const (
	NoDataMessage   = "No PNR data available to summarize."
	FallbackMessage = "Could not generate a summary right now. Raw ticket data is available."
)

const DefaultLanguage = "english"

const summarySystemPrompt = `You are an Indian Railway PNR assistant.

Output must be extremely short, clear and spoken-friendly because it will be sent to a text-to-speech engine.

Rules:
- Do not repeat the PNR number.
- Give all ticket details together in one short paragraph.
- Include: train name and number, class, from and to stations, date, chart status, and each passenger's booking status.
- Only if a passenger is not confirmed, add a very short likelihood of confirmation: high, medium or low.
- Keep sentences tiny and natural.
- Do not invent details that are not in the data.
- End with a friendly greeting like "Thank you and have a safe journey."
- Respond in %s.`

// Summarize turns a resolution into a short spoken-style paragraph in
// language. It always returns text: NoDataMessage when there is nothing to
// summarize, FallbackMessage when the model is missing or fails.
func (m *Model) Summarize(ctx context.Context, res *models.Resolution, language string) string {
	payload := res.Payload()
	if isEmptyPayload(payload) {
		return NoDataMessage
	}
	if m == nil {
		return FallbackMessage
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		m.logger.Warn("failed to encode ticket for summary", "error", err)
		return FallbackMessage
	}

	userPrompt := fmt.Sprintf("PNR Data:\n%s\n\nSummary:", data)
	summary, err := m.GenerateWithSystem(ctx, fmt.Sprintf(summarySystemPrompt, language), userPrompt)
	if err != nil {
		if errors.Is(err, ErrFatalAPI) {
			m.logger.Error("summarization unavailable", "model", m.modelName, "error", err)
		} else {
			m.logger.Warn("summarization failed", "model", m.modelName, "error", err)
		}
		return FallbackMessage
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return FallbackMessage
	}
	return summary
}

func isEmptyPayload(p any) bool {
	switch v := p.(type) {
	case nil:
		return true
	case json.RawMessage:
		return len(v) == 0
	case *models.TicketRecord:
		return v == nil
	default:
		return false
	}
}
