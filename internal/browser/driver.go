// Package browser drives a fingerprint-resistant headless Chrome session
// against the fallback PNR status website.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/raphaelgruber/railvoice/internal/models"
)

const (
	DefaultURL         = "https://www.confirmtkt.com/pnr-status"
	DefaultElementWait = 20 * time.Second

	screenshotTimeout = 10 * time.Second
	screenshotQuality = 100 // 100 selects PNG encoding
)

// DefaultErrorPhrases are shown by the target site when results failed to
// paint. A scroll cycle usually makes the real content appear.
func DefaultErrorPhrases() []string {
	return []string{"Something went wrong", "Sorry!"}
}

// Options configures a Driver.
type Options struct {
	URL       string
	RemoteURL string // DevTools URL of an already running browser
	ExecPath  string
	Headless  bool
	UserAgent string

	ElementWait time.Duration
	DebugDir    string

	InputStrategies  []Strategy
	SubmitStrategies []Strategy
	ErrorPhrases     []string
}

// Page is the rendered result of one lookup.
type Page struct {
	Text       string
	HTML       string
	ArtifactID string
}

// Launcher acquires an exclusive browser session. The returned context
// drives the session and release must tear it down.
type Launcher func(ctx context.Context) (context.Context, func(), error)

// Driver fetches rendered status pages. Each Fetch owns its own browser for
// its whole lifetime, so a Driver is safe for concurrent use.
type Driver struct {
	opts   Options
	pacer  *Pacer
	launch Launcher
	logger *slog.Logger
}

// Option customizes a Driver.
type Option func(*Driver)

// WithPacer replaces the default randomized pacer.
func WithPacer(p *Pacer) Option {
	return func(d *Driver) { d.pacer = p }
}

// WithLauncher replaces the default Chrome launcher.
func WithLauncher(l Launcher) Option {
	return func(d *Driver) { d.launch = l }
}

// New creates a Driver, filling unset options with defaults.
func New(opts Options, logger *slog.Logger, options ...Option) *Driver {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ElementWait <= 0 {
		opts.ElementWait = DefaultElementWait
	}
	if len(opts.InputStrategies) == 0 {
		opts.InputStrategies = DefaultInputStrategies()
	}
	if len(opts.SubmitStrategies) == 0 {
		opts.SubmitStrategies = DefaultSubmitStrategies()
	}
	if len(opts.ErrorPhrases) == 0 {
		opts.ErrorPhrases = DefaultErrorPhrases()
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Driver{opts: opts, pacer: NewPacer(), logger: logger}
	d.launch = d.launchBrowser
	for _, o := range options {
		o(d)
	}
	return d
}

// Fetch submits pnr on the lookup page and returns the rendered result.
//
// Any failure is reported as a single error wrapping
// models.ErrSourceUnavailable, after a best-effort screenshot. The browser
// session is released on every path.
func (d *Driver) Fetch(ctx context.Context, pnr string) (*Page, error) {
	if err := models.ValidatePNR(pnr); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := d.logger.With("artifact_id", id)

	sessCtx, release, err := d.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %v", models.ErrSourceUnavailable, err)
	}
	defer release()

	start := time.Now()
	page, err := d.interact(sessCtx, logger, pnr)
	if err != nil {
		logger.Warn("browser lookup failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		d.saveScreenshot(sessCtx, logger, id)
		return nil, fmt.Errorf("%w: %w", models.ErrSourceUnavailable, err)
	}

	page.ArtifactID = id
	d.saveHTML(logger, id, page.HTML)
	logger.Info("browser lookup complete", "chars", len(page.Text), "duration_ms", time.Since(start).Milliseconds())
	return page, nil
}

func (d *Driver) interact(ctx context.Context, logger *slog.Logger, pnr string) (*Page, error) {
	if err := chromedp.Run(ctx, d.stealth(), chromedp.Navigate(d.opts.URL)); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := d.pacer.pause(ctx, arrivalPause); err != nil {
		return nil, err
	}

	input, err := firstMatch(ctx, d.opts.InputStrategies, d.opts.ElementWait, waitClickable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	logger.Debug("found input", "strategy", input.String())

	if err := d.typePNR(ctx, input, pnr); err != nil {
		return nil, fmt.Errorf("enter pnr: %w", err)
	}

	submit, err := firstMatch(ctx, d.opts.SubmitStrategies, d.opts.ElementWait, waitClickable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitNotFound, err)
	}
	logger.Debug("found submit", "strategy", submit.String())

	if err := d.run(ctx, chromedp.ScrollIntoView(submit.Selector, submit.option())); err != nil {
		return nil, fmt.Errorf("scroll to submit: %w", err)
	}
	if err := d.pacer.pause(ctx, preClickPause); err != nil {
		return nil, err
	}
	if err := d.run(ctx, chromedp.Click(submit.Selector, submit.option())); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	// The site has no ready signal, so results get a fixed randomized dwell.
	if err := d.pacer.pause(ctx, resultsDwell); err != nil {
		return nil, err
	}

	page, err := d.read(ctx)
	if err != nil {
		return nil, err
	}

	if containsAny(page.Text, d.opts.ErrorPhrases) {
		logger.Debug("error phrase on page, scrolling to repaint")
		if err := d.scrollCycle(ctx); err != nil {
			return nil, fmt.Errorf("scroll cycle: %w", err)
		}
		if page, err = d.read(ctx); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// typePNR clicks the field, clears it and types one character at a time.
func (d *Driver) typePNR(ctx context.Context, s Strategy, pnr string) error {
	if err := d.run(ctx, chromedp.Click(s.Selector, s.option())); err != nil {
		return err
	}
	if err := d.pacer.pause(ctx, preTypePause); err != nil {
		return err
	}
	if err := d.run(ctx, chromedp.Clear(s.Selector, s.option())); err != nil {
		return err
	}
	for _, ch := range pnr {
		if err := d.run(ctx, chromedp.SendKeys(s.Selector, string(ch), s.option())); err != nil {
			return err
		}
		if err := d.pacer.pause(ctx, keystrokePause); err != nil {
			return err
		}
	}
	return d.pacer.pause(ctx, postTypePause)
}

func (d *Driver) scrollCycle(ctx context.Context) error {
	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight), true`, &ok)); err != nil {
		return err
	}
	if err := d.pacer.pause(ctx, scrollDownWait); err != nil {
		return err
	}
	if err := chromedp.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, 0), true`, &ok)); err != nil {
		return err
	}
	return d.pacer.pause(ctx, scrollUpWait)
}

func (d *Driver) read(ctx context.Context) (*Page, error) {
	var page Page
	err := d.run(ctx,
		chromedp.Text("body", &page.Text, chromedp.ByQuery),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return &page, nil
}

// run executes actions bounded by the element wait.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.ElementWait)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
