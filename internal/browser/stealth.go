package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// allocatorOptions builds Chrome flags that suppress the usual automation
// fingerprints and first-run prompts.
func (d *Driver) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-save-password-bubble", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("start-maximized", true),
		chromedp.UserAgent(d.opts.UserAgent),
		chromedp.WindowSize(1920, 1080),
	}
	if d.opts.Headless {
		opts = append(opts,
			chromedp.Flag("headless", "new"),
			chromedp.Flag("hide-scrollbars", true),
			chromedp.Flag("mute-audio", true),
		)
	}
	if d.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.opts.ExecPath))
	}
	return opts
}

// stealth hides navigator.webdriver on every new document and pins the
// user agent at the protocol level. It must run before the first navigation.
func (d *Driver) stealth() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx); err != nil {
			return fmt.Errorf("install webdriver shim: %w", err)
		}
		if err := emulation.SetUserAgentOverride(d.opts.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("override user agent: %w", err)
		}
		return nil
	})
}

// launchBrowser is the default Launcher. It starts a local Chrome, or
// attaches to a remote one when a DevTools URL is configured, and opens a
// dedicated tab. The returned release closes the tab and the browser.
func (d *Driver) launchBrowser(ctx context.Context) (context.Context, func(), error) {
	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if d.opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, d.opts.RemoteURL)
	} else {
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, d.allocatorOptions()...)
	}

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	release := func() {
		cancelTab()
		cancelAlloc()
	}

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, nil, err
	}
	return tabCtx, release, nil
}
