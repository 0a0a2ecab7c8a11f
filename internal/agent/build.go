package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/railvoice/internal/browser"
	"github.com/raphaelgruber/railvoice/internal/config"
	"github.com/raphaelgruber/railvoice/internal/llm"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/raphaelgruber/railvoice/internal/resolver"
	"github.com/raphaelgruber/railvoice/internal/speech"
	"github.com/raphaelgruber/railvoice/internal/status"
	"github.com/raphaelgruber/railvoice/internal/ticket"
)

// NewFromConfig wires every collaborator from configuration. A summarizer
// that cannot be created is logged and left out; summaries then degrade to
// the fallback message. The returned close function releases the speech
// clients.
func NewFromConfig(ctx context.Context, cfg config.Config, collector *metrics.Collector, logger *slog.Logger) (*Agent, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}

	primary := status.New(status.Options{
		BaseURL: cfg.StatusURL,
		APIKey:  cfg.RapidAPIKey,
		Host:    cfg.RapidAPIHost,
		Timeout: cfg.StatusTimeout,
	}, logger.With("component", "status"))
	if cfg.RapidAPIKey == "" {
		logger.Warn("RAPIDAPI_KEY not set, every lookup will use the browser fallback")
	}

	driver := browser.New(cfg.BrowserOptions(profile), logger.With("component", "browser"))
	parser := ticket.NewParser(cfg.Markers(profile))
	res := resolver.New(primary, driver, parser, collector, logger.With("component", "resolver"))

	model, err := llm.NewModel(ctx, cfg, collector, logger.With("component", "llm"))
	if err != nil {
		logger.Warn("summarizer disabled", "provider", cfg.LLMProvider, "error", err)
		model = nil
	}

	transcriber := speech.NewTranscriber(speech.TranscriberOptions{
		APIKey:  cfg.STTAPIKey,
		BaseURL: cfg.STTBaseURL,
		Model:   cfg.STTModel,
	}, collector, logger.With("component", "stt"))
	synthesizer := speech.NewSynthesizer(speech.SynthesizerOptions{
		CredentialsFile: cfg.TTSCredentials,
		VoiceGender:     cfg.TTSVoiceGender,
	}, collector, logger.With("component", "tts"))

	return New(res, model, transcriber, synthesizer, logger), synthesizer.Close, nil
}
