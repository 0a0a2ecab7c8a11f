package speech

import "errors"

// MinAudioBytes is the smallest upload treated as audio.
const MinAudioBytes = 10

var (
	// ErrAudioTooSmall is returned for empty or truncated uploads.
	ErrAudioTooSmall = errors.New("uploaded audio is empty or too small")
	// ErrNoSpeech is returned when transcription yields no text.
	ErrNoSpeech = errors.New("no speech detected in audio")
	// ErrUnavailable is returned when a speech service is not configured.
	ErrUnavailable = errors.New("speech service unavailable")
)
