// Package agent wires the voice pipeline: transcript, PNR, resolution,
// summary and speech.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/resolver"
	"github.com/raphaelgruber/railvoice/internal/speech"
	"github.com/raphaelgruber/railvoice/internal/transcript"
)

// Resolver resolves a PNR to its booking status.
type Resolver interface {
	Resolve(ctx context.Context, pnr string, opts ...resolver.ResolveOption) (*models.Resolution, error)
}

// Summarizer turns a resolution into a spoken-style summary. It never fails.
type Summarizer interface {
	Summarize(ctx context.Context, res *models.Resolution, language string) string
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (*speech.Transcription, error)
}

// Synthesizer converts text to MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Agent runs the pipeline steps individually or end to end. Any
// collaborator except the resolver may be nil; the matching step then
// reports speech.ErrUnavailable or a fallback summary.
type Agent struct {
	resolver    Resolver
	summarizer  Summarizer
	transcriber Transcriber
	synthesizer Synthesizer
	logger      *slog.Logger
}

// New creates an agent.
func New(r Resolver, summarizer Summarizer, transcriber Transcriber, synthesizer Synthesizer, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		resolver:    r,
		summarizer:  summarizer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// StatusReport is a resolution plus its summary.
type StatusReport struct {
	*models.Resolution
	Summary  string `json:"summary"`
	Language string `json:"language"`
}

// ExtractPNR finds a PNR in free text.
func (a *Agent) ExtractPNR(text string) (string, error) {
	return transcript.ExtractPNR(text)
}

// Resolve looks up a PNR without summarizing it.
func (a *Agent) Resolve(ctx context.Context, pnr string, opts ...resolver.ResolveOption) (*models.Resolution, error) {
	return a.resolver.Resolve(ctx, strings.TrimSpace(pnr), opts...)
}

// Status resolves a PNR and summarizes it in language.
func (a *Agent) Status(ctx context.Context, pnr, language string, opts ...resolver.ResolveOption) (*StatusReport, error) {
	res, err := a.Resolve(ctx, pnr, opts...)
	if err != nil {
		return nil, err
	}
	return a.Report(ctx, res, language), nil
}

// Lookup resolves a PNR and, when summarize is set, summarizes it.
// onSummarize, if non-nil, is called after a successful resolution and
// before the summarizer runs.
func (a *Agent) Lookup(ctx context.Context, pnr, language string, summarize bool, onSummarize func(), opts ...resolver.ResolveOption) (*StatusReport, error) {
	res, err := a.Resolve(ctx, pnr, opts...)
	if err != nil {
		return nil, err
	}
	if !summarize {
		return &StatusReport{Resolution: res, Language: normalizeLanguage(language)}, nil
	}
	if onSummarize != nil {
		onSummarize()
	}
	return a.Report(ctx, res, language), nil
}

// Report summarizes an existing resolution in language.
func (a *Agent) Report(ctx context.Context, res *models.Resolution, language string) *StatusReport {
	language = normalizeLanguage(language)

	summary := ""
	if a.summarizer != nil {
		summary = a.summarizer.Summarize(ctx, res, language)
	}
	return &StatusReport{Resolution: res, Summary: summary, Language: language}
}

// Transcribe converts an utterance to text.
func (a *Agent) Transcribe(ctx context.Context, audio []byte, filename string) (*speech.Transcription, error) {
	if a.transcriber == nil {
		return nil, fmt.Errorf("%w: no transcriber configured", speech.ErrUnavailable)
	}
	return a.transcriber.Transcribe(ctx, audio, filename)
}

// Speak renders text as MP3 in language.
func (a *Agent) Speak(ctx context.Context, text, language string) ([]byte, error) {
	if a.synthesizer == nil {
		return nil, fmt.Errorf("%w: no synthesizer configured", speech.ErrUnavailable)
	}
	return a.synthesizer.Synthesize(ctx, text, language)
}

func normalizeLanguage(language string) string {
	if language == "" {
		return speech.DefaultLanguage
	}
	return strings.ToLower(language)
}
