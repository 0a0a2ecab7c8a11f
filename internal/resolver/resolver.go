// Package resolver turns a PNR into a ticket by trying the status API first
// and driving the fallback website only when the API misses.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/railvoice/internal/browser"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/status"
)

// PrimaryClient is the first tier. A non-nil error is a miss.
type PrimaryClient interface {
	Lookup(ctx context.Context, pnr string) ([]byte, error)
}

// PageFetcher is the fallback tier. It must release every resource it
// acquires before returning.
type PageFetcher interface {
	Fetch(ctx context.Context, pnr string) (*browser.Page, error)
}

// PageParser turns fetched page text into a ticket record. It never fails.
type PageParser interface {
	Parse(pageText, pnr string) *models.TicketRecord
}

// Stage is a state of the resolution state machine.
type Stage string

const (
	StageTryPrimary  Stage = "try_primary"
	StageTryFallback Stage = "try_fallback"
	StageDone        Stage = "done"
)

// Event reports a state transition. Err is set on Done when resolution
// failed, and on a tier transition when the previous tier missed.
type Event struct {
	PNR   string
	Stage Stage
	Err   error
}

// ResolveOption customizes a single Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	observe func(Event)
}

// Observe registers fn to receive every state transition of one call.
func Observe(fn func(Event)) ResolveOption {
	return func(o *resolveOptions) { o.observe = fn }
}

// Resolver runs the two-tier lookup. It holds no per-request state and is
// safe for concurrent use.
type Resolver struct {
	primary   PrimaryClient
	fallback  PageFetcher
	parser    PageParser
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a Resolver. collector may be nil.
func New(primary PrimaryClient, fallback PageFetcher, parser PageParser, collector *metrics.Collector, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		primary:   primary,
		fallback:  fallback,
		parser:    parser,
		collector: collector,
		logger:    logger,
	}
}

// Resolve returns the first tier's successful result for pnr.
//
// Terminal failures wrap models.ErrInvalidPNR (neither tier is invoked) or
// models.ErrAllSourcesExhausted. Tier misses never escape on their own.
// The tiers run strictly in sequence and their results are never merged.
func (r *Resolver) Resolve(ctx context.Context, pnr string, opts ...ResolveOption) (*models.Resolution, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	emit := func(stage Stage, err error) {
		if o.observe != nil {
			o.observe(Event{PNR: pnr, Stage: stage, Err: err})
		}
	}

	if err := models.ValidatePNR(pnr); err != nil {
		metrics.ObserveResolution(metrics.SourceNone, metrics.OutcomeInvalid)
		emit(StageDone, err)
		return nil, err
	}

	logger := r.logger.With("pnr", pnr)
	var (
		res      *models.Resolution
		primeErr error
	)

	stage := StageTryPrimary
	for stage != StageDone {
		switch stage {
		case StageTryPrimary:
			emit(stage, nil)
			res, primeErr = r.tryPrimary(ctx, logger, pnr)
			if primeErr == nil {
				stage = StageDone
				continue
			}
			logger.Info("primary source missed, falling back to browser", "error", primeErr)
			stage = StageTryFallback

		case StageTryFallback:
			emit(stage, primeErr)
			var err error
			res, err = r.tryFallback(ctx, logger, pnr)
			if err != nil {
				logger.Warn("all sources exhausted", "error", err)
				metrics.ObserveResolution(metrics.SourceNone, metrics.OutcomeExhausted)
				err = fmt.Errorf("%w: %w", models.ErrAllSourcesExhausted, errors.Join(primeErr, err))
				emit(StageDone, err)
				return nil, err
			}
			stage = StageDone
		}
	}

	outcome := metrics.OutcomeSuccess
	if res.Degraded {
		outcome = metrics.OutcomeDegraded
	}
	metrics.ObserveResolution(string(res.Source), outcome)
	logger.Info("pnr resolved", "source", res.Source, "degraded", res.Degraded)
	emit(StageDone, nil)
	return res, nil
}

func (r *Resolver) tryPrimary(ctx context.Context, logger *slog.Logger, pnr string) (*models.Resolution, error) {
	start := time.Now()
	payload, err := r.primary.Lookup(ctx, pnr)
	r.observe(metrics.OpPrimaryLookup, metrics.TierPrimary, start, err)
	if err != nil {
		return nil, err
	}

	ticket := status.Normalize(payload, pnr)
	logger.Debug("primary source hit", "bytes", len(payload), "projected", ticket.Populated())
	return &models.Resolution{
		PNR:      pnr,
		Source:   models.SourceAPI,
		Ticket:   ticket,
		Raw:      json.RawMessage(payload),
		Degraded: false,
	}, nil
}

func (r *Resolver) tryFallback(ctx context.Context, logger *slog.Logger, pnr string) (*models.Resolution, error) {
	start := time.Now()
	page, err := r.fallback.Fetch(ctx, pnr)
	r.observe(metrics.OpBrowserFallback, metrics.TierBrowser, start, err)
	if err != nil {
		return nil, err
	}

	// Driver success is what counts; a sparse record is still a result.
	ticket := r.parser.Parse(page.Text, pnr)
	degraded := !ticket.Populated()
	if degraded {
		logger.Warn("fallback page yielded no ticket fields", "artifact_id", page.ArtifactID)
	}
	return &models.Resolution{
		PNR:      pnr,
		Source:   models.SourceBrowser,
		Ticket:   ticket,
		Degraded: degraded,
	}, nil
}

func (r *Resolver) observe(op, tier string, start time.Time, err error) {
	d := time.Since(start)
	r.collector.RecordTiming(op, d, err)
	metrics.ObserveTier(tier, d)
}
