package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"github.com/tidwall/gjson"
)

// DefaultSTTModel is the Whisper model requested when none is configured.
const DefaultSTTModel = "whisper-large-v3"

// Transcription is the text recognized in an utterance.
type Transcription struct {
	Text string `json:"text"`
	// Language is the pipeline language name after script refinement.
	Language string `json:"language"`
	// LanguageCode is what the transcriber itself reported.
	LanguageCode string `json:"detected_language_code"`
}

// TranscriberOptions configures a Transcriber. BaseURL points at any
// OpenAI-compatible transcription endpoint.
type TranscriberOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Transcriber sends audio to a Whisper-style transcription API.
type Transcriber struct {
	client    openai.Client
	model     string
	enabled   bool
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewTranscriber creates a transcriber. Without an API key every call
// returns ErrUnavailable.
func NewTranscriber(opts TranscriberOptions, collector *metrics.Collector, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Model == "" {
		opts.Model = DefaultSTTModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(opts.APIKey)),
		option.WithMaxRetries(1),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSpace(opts.BaseURL)))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &Transcriber{
		client:    openai.NewClient(reqOpts...),
		model:     opts.Model,
		enabled:   strings.TrimSpace(opts.APIKey) != "",
		collector: collector,
		logger:    logger,
	}
}

// Transcribe recognizes speech in audio. filename only hints the container
// format to the service. WAV input is normalized to 16 kHz mono first; if
// that fails the original bytes are sent.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	if len(audio) < MinAudioBytes {
		return nil, ErrAudioTooSmall
	}
	if !t.enabled {
		return nil, fmt.Errorf("%w: no transcription API key", ErrUnavailable)
	}

	if IsWAV(audio) {
		if mono, err := NormalizeWAVBytes(audio); err == nil {
			audio = mono
		} else {
			t.logger.Debug("wav normalization skipped", "error", err)
		}
	}
	if filename == "" {
		filename = "audio" + sniffExtension(audio)
	}

	start := time.Now()
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(audio), filepath.Base(filename), "application/octet-stream"),
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	})
	duration := time.Since(start)
	metrics.ObserveTier(metrics.TierSpeechToText, duration)
	t.collector.RecordTiming(metrics.OpTranscribe, duration, err)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, ErrNoSpeech
	}

	reported := gjson.Get(resp.RawJSON(), "language").String()
	result := &Transcription{
		Text:         text,
		Language:     RefineLanguage(reported, text),
		LanguageCode: reported,
	}
	t.logger.Debug("transcription complete",
		"model", t.model,
		"duration_ms", duration.Milliseconds(),
		"reported_language", reported,
		"language", result.Language)
	return result, nil
}

// sniffExtension guesses a file extension from magic bytes.
func sniffExtension(b []byte) string {
	switch {
	case IsWAV(b):
		return ".wav"
	case bytes.HasPrefix(b, []byte("ID3")), len(b) > 1 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return ".mp3"
	case bytes.HasPrefix(b, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(b, []byte("fLaC")):
		return ".flac"
	case len(b) > 8 && string(b[4:8]) == "ftyp":
		return ".m4a"
	case bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ".webm"
	default:
		return ".bin"
	}
}
