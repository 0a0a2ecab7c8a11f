// Package status queries the third-party PNR status API, the primary
// resolution tier.
package status

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://irctc-indian-railway-pnr-status.p.rapidapi.com"
	DefaultHost    = "irctc-indian-railway-pnr-status.p.rapidapi.com"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 2 << 20
)

// errorIndicator marks a payload as an error response wherever it appears.
const errorIndicator = "error"

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	Host    string
	Timeout time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client performs single-attempt PNR lookups. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a status API client.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     strings.TrimSpace(opts.APIKey),
		host:       opts.Host,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Lookup fetches the status payload for pnr and returns it unmodified.
//
// There is exactly one attempt. Transport failures and non-2xx responses wrap
// models.ErrSourceUnavailable; empty, unparseable or error-shaped payloads
// wrap models.ErrSourceMiss. Both mean "try the next tier".
func (c *Client) Lookup(ctx context.Context, pnr string) ([]byte, error) {
	if err := models.ValidatePNR(pnr); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", models.ErrSourceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getPNRStatus/"+pnr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", models.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", models.ErrSourceUnavailable, err)
	}

	c.logger.Debug("status api response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", models.ErrSourceUnavailable, resp.StatusCode)
	}

	if err := checkPayload(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkPayload rejects anything that is not a non-empty, error-free JSON
// object or array.
func checkPayload(body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty response", models.ErrSourceMiss)
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: invalid JSON", models.ErrSourceMiss)
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.IsObject():
		if len(root.Map()) == 0 {
			return fmt.Errorf("%w: empty object", models.ErrSourceMiss)
		}
	case root.IsArray():
		if len(root.Array()) == 0 {
			return fmt.Errorf("%w: empty array", models.ErrSourceMiss)
		}
	default:
		return fmt.Errorf("%w: unexpected %s payload", models.ErrSourceMiss, root.Type)
	}

	if bytes.Contains(bytes.ToLower(body), []byte(errorIndicator)) {
		return fmt.Errorf("%w: error in payload", models.ErrSourceMiss)
	}
	return nil
}
