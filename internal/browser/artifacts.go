package browser

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"
)

// Diagnostic artifacts are best-effort. Failures are logged at WARN and never
// change the outcome of a lookup.

func (d *Driver) saveHTML(logger *slog.Logger, id, html string) {
	if d.opts.DebugDir == "" {
		return
	}
	path := filepath.Join(d.opts.DebugDir, id+"-page.html")
	if err := writeArtifact(path, []byte(html)); err != nil {
		logger.Warn("failed to save page html", "path", path, "error", err)
		return
	}
	logger.Debug("saved page html", "path", path)
}

func (d *Driver) saveScreenshot(ctx context.Context, logger *slog.Logger, id string) {
	if d.opts.DebugDir == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, screenshotTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, screenshotQuality)); err != nil {
		logger.Warn("failed to capture screenshot", "error", err)
		return
	}

	path := filepath.Join(d.opts.DebugDir, id+"-error.png")
	if err := writeArtifact(path, buf); err != nil {
		logger.Warn("failed to save screenshot", "path", path, "error", err)
		return
	}
	logger.Info("saved error screenshot", "path", path)
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
