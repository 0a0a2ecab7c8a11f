package agent

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/railvoice/internal/resolver"
	"github.com/raphaelgruber/railvoice/internal/speech"
)

// FlowResult collects what the complete flow produced before it stopped.
// Fields after the failing step are empty.
type FlowResult struct {
	Transcript *speech.Transcription
	PNR        string
	Report     *StatusReport
	// Audio is the spoken summary, set only when requested and synthesis
	// succeeded.
	Audio []byte
}

// FlowOptions tunes CompleteFlow.
type FlowOptions struct {
	// Speak synthesizes the summary. A synthesis failure is logged and
	// leaves Audio empty; the flow still succeeds.
	Speak   bool
	Resolve []resolver.ResolveOption
}

// CompleteFlow runs the whole pipeline on one utterance. The returned
// result is never nil; on error it holds the steps that did complete.
// Errors wrap speech.ErrAudioTooSmall, models.ErrNoPNRFound or a resolver
// error so callers can tell the steps apart.
func (a *Agent) CompleteFlow(ctx context.Context, audio []byte, filename string, opts FlowOptions) (*FlowResult, error) {
	result := &FlowResult{}

	tr, err := a.Transcribe(ctx, audio, filename)
	if err != nil {
		return result, fmt.Errorf("transcribe: %w", err)
	}
	result.Transcript = tr
	logger := a.logger.With("language", tr.Language)

	pnr, err := a.ExtractPNR(tr.Text)
	if err != nil {
		logger.Info("no pnr in utterance", "text", tr.Text)
		return result, err
	}
	result.PNR = pnr
	logger = logger.With("pnr", pnr)

	res, err := a.Resolve(ctx, pnr, opts.Resolve...)
	if err != nil {
		logger.Warn("pnr status not found", "error", err)
		return result, err
	}
	result.Report = a.Report(ctx, res, tr.Language)

	if opts.Speak && result.Report.Summary != "" {
		audio, err := a.Speak(ctx, result.Report.Summary, tr.Language)
		if err != nil {
			logger.Warn("failed to speak summary", "error", err)
		} else {
			result.Audio = audio
		}
	}

	logger.Info("voice request complete", "source", res.Source, "degraded", res.Degraded)
	return result, nil
}
