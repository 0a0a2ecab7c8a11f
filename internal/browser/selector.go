package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

var (
	ErrInputNotFound  = errors.New("pnr input not found")
	ErrSubmitNotFound = errors.New("submit control not found")
)

// Selector kinds.
const (
	KindQuery = "query" // CSS selector
	KindXPath = "xpath"
)

// Strategy is one way of locating an element on the lookup page.
type Strategy struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Selector string `yaml:"selector"`
}

func (s Strategy) option() chromedp.QueryOption {
	if s.Kind == KindXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s Strategy) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Kind + ":" + s.Selector
}

// DefaultInputStrategies lists ways to find the PNR input, most specific first.
func DefaultInputStrategies() []Strategy {
	return []Strategy{
		{Name: "name", Kind: KindQuery, Selector: `input[name='pnr']`},
		{Name: "id", Kind: KindQuery, Selector: `#pnrNumber`},
		{Name: "placeholder", Kind: KindXPath, Selector: `//input[@placeholder='Enter PNR Number']`},
		{Name: "placeholder-contains", Kind: KindXPath, Selector: `//input[contains(@placeholder, 'PNR')]`},
		{Name: "text-input", Kind: KindQuery, Selector: `input[type='text']`},
	}
}

// DefaultSubmitStrategies lists ways to find the submit control.
func DefaultSubmitStrategies() []Strategy {
	return []Strategy{
		{Name: "submit-xpath", Kind: KindXPath, Selector: `//button[@type='submit']`},
		{Name: "label", Kind: KindXPath, Selector: `//button[contains(text(), 'Check Status')]`},
		{Name: "class", Kind: KindXPath, Selector: `//button[contains(@class, 'submit')]`},
		{Name: "submit-css", Kind: KindQuery, Selector: `button[type='submit']`},
		{Name: "any-button", Kind: KindQuery, Selector: `button`},
	}
}

// firstMatch tries each strategy in order, giving each its own wait budget,
// and returns the first one for which try succeeds. A failed strategy falls
// through to the next; only exhausting the list is an error.
func firstMatch(ctx context.Context, strategies []Strategy, wait time.Duration, try func(context.Context, Strategy) error) (Strategy, error) {
	var errs []error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return Strategy{}, err
		}

		sctx, cancel := context.WithTimeout(ctx, wait)
		err := try(sctx, s)
		cancel()
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s, err))
	}
	if len(errs) == 0 {
		return Strategy{}, errors.New("no strategies configured")
	}
	return Strategy{}, errors.Join(errs...)
}

// waitClickable succeeds once the element is visible and enabled.
func waitClickable(ctx context.Context, s Strategy) error {
	return chromedp.Run(ctx,
		chromedp.WaitVisible(s.Selector, s.option()),
		chromedp.WaitEnabled(s.Selector, s.option()),
	)
}
