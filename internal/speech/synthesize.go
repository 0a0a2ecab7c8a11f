package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/raphaelgruber/railvoice/internal/metrics"
	"google.golang.org/api/option"
)

// SynthesizerOptions configures a Synthesizer.
type SynthesizerOptions struct {
	// CredentialsFile is a service account JSON file. Empty uses the
	// application default credentials.
	CredentialsFile string
	// VoiceGender is "female", "male" or "neutral".
	VoiceGender string
}

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) ([]byte, error)

// Synthesizer turns text into MP3 audio with Google Cloud Text-to-Speech.
// The client is created on first use so a missing credential only breaks
// synthesis, not startup.
type Synthesizer struct {
	opts      SynthesizerOptions
	collector *metrics.Collector
	logger    *slog.Logger

	once       sync.Once
	synthesize synthesizeFunc
	initErr    error
	close      func() error
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(opts SynthesizerOptions, collector *metrics.Collector, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{opts: opts, collector: collector, logger: logger}
}

func (s *Synthesizer) init(ctx context.Context) {
	s.once.Do(func() {
		if s.synthesize != nil {
			return
		}
		var clientOpts []option.ClientOption
		if s.opts.CredentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(s.opts.CredentialsFile))
		}
		client, err := texttospeech.NewClient(ctx, clientOpts...)
		if err != nil {
			s.initErr = fmt.Errorf("%w: text-to-speech client: %w", ErrUnavailable, err)
			return
		}
		s.close = client.Close
		s.synthesize = func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) ([]byte, error) {
			resp, err := client.SynthesizeSpeech(ctx, req)
			if err != nil {
				return nil, err
			}
			return resp.AudioContent, nil
		}
	})
}

// Synthesize renders text as MP3 in the named language. Unknown languages
// are spoken with the English voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("synthesize: empty text")
	}
	s.init(ctx)
	if s.initErr != nil {
		return nil, s.initErr
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: Locale(language),
			SsmlGender:   voiceGender(s.opts.VoiceGender),
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	start := time.Now()
	audio, err := s.synthesize(ctx, req)
	duration := time.Since(start)
	metrics.ObserveTier(metrics.TierTextToSpeech, duration)
	s.collector.RecordTiming(metrics.OpSynthesize, duration, err)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	s.logger.Debug("speech synthesized",
		"locale", req.Voice.LanguageCode,
		"chars", len(text),
		"bytes", len(audio),
		"duration_ms", duration.Milliseconds())
	return audio, nil
}

// Close releases the underlying client, if one was created.
func (s *Synthesizer) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func voiceGender(g string) texttospeechpb.SsmlVoiceGender {
	switch strings.ToLower(g) {
	case "male":
		return texttospeechpb.SsmlVoiceGender_MALE
	case "neutral":
		return texttospeechpb.SsmlVoiceGender_NEUTRAL
	case "female":
		return texttospeechpb.SsmlVoiceGender_FEMALE
	default:
		return texttospeechpb.SsmlVoiceGender_SSML_VOICE_GENDER_UNSPECIFIED
	}
}
