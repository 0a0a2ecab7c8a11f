// Package client provides an HTTP client for a running railvoice server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultURL is used when neither an argument nor RAILVOICE_SERVER_URL is set.
const DefaultURL = "http://localhost:8000"

// Client talks to the railvoice HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client.
// If baseURL is empty, uses RAILVOICE_SERVER_URL env var or defaults to localhost:8000.
// Timeout can be configured via RAILVOICE_CLIENT_TIMEOUT env var (default 2m, enough for a browser fallback).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("RAILVOICE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("RAILVOICE_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiError is the failure shape every endpoint shares.
type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StatusResult is the server's answer to a status request.
type StatusResult struct {
	Success  bool            `json:"success"`
	PNR      string          `json:"pnr"`
	PNRData  json.RawMessage `json:"pnr_data"`
	Source   string          `json:"source"`
	Degraded bool            `json:"degraded"`
	Summary  string          `json:"summary"`
	Language string          `json:"language"`
}

// ExtractResult is the server's answer to an extraction request.
type ExtractResult struct {
	Success      bool   `json:"success"`
	PNR          string `json:"pnr"`
	OriginalText string `json:"original_text"`
}

// post sends a JSON body and returns the raw response body. Non-2xx
// responses and success:false bodies become errors.
func (c *Client) post(ctx context.Context, path string, body any, accept string) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var e apiError
		if json.Unmarshal(data, &e) == nil && !e.Success && e.Error != "" {
			return nil, fmt.Errorf("server error: %s", e.Error)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server error: %s - %s", resp.Status, string(data))
	}
	return data, nil
}

// statusRequest is the body of a status lookup, over HTTP or websocket.
type statusRequest struct {
	PNR      string `json:"pnr"`
	Language string `json:"language"`
	Summary  bool   `json:"summary"`
}

// Status resolves a PNR on the server. With summarize unset the server
// skips the summary.
func (c *Client) Status(ctx context.Context, pnr, language string, summarize bool) (*StatusResult, error) {
	data, err := c.post(ctx, "/get_pnr_status", statusRequest{PNR: pnr, Language: language, Summary: summarize}, "application/json")
	if err != nil {
		return nil, err
	}
	var result StatusResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}

// ExtractPNR asks the server to find a PNR in text.
func (c *Client) ExtractPNR(ctx context.Context, text string) (string, error) {
	data, err := c.post(ctx, "/extract_pnr", map[string]string{"text": text}, "application/json")
	if err != nil {
		return "", err
	}
	var result ExtractResult
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.PNR, nil
}

// Speak returns MP3 audio for text.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	return c.post(ctx, "/text_to_speech", map[string]string{"text": text, "language": language}, "audio/mpeg")
}
