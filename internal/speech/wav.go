package speech

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Output format for normalized WAV audio.
const (
	normalizedRate  = 16000
	normalizedDepth = 16
)

// IsWAV reports whether b starts with a RIFF/WAVE header.
func IsWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

// NormalizeWAV converts a PCM WAV of any rate and one or two channels to
// 16-bit 16 kHz mono.
func NormalizeWAV(r io.ReadSeeker, w io.WriteSeeker) error {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return errors.New("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return errors.New("empty wav data")
	}

	rate, chans, depth := int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth)
	if rate <= 0 {
		return errors.New("invalid sample rate")
	}
	if chans != 1 && chans != 2 {
		return fmt.Errorf("unsupported channel count %d", chans)
	}
	if depth <= 0 || depth > 32 {
		return fmt.Errorf("unsupported bit depth %d", depth)
	}

	scale := float64(int64(1) << (depth - 1))
	samples := audio.FloatBuffer{
		Data:   make([]float64, len(buf.Data)),
		Format: &audio.Format{NumChannels: chans, SampleRate: rate},
	}
	for i, v := range buf.Data {
		samples.Data[i] = clamp(float64(v) / scale)
	}

	mono := samples.Data
	if chans == 2 {
		mono = make([]float64, len(samples.Data)/2)
		for i := range mono {
			mono[i] = 0.5 * (samples.Data[2*i] + samples.Data[2*i+1])
		}
	}
	mono = resample(mono, rate, normalizedRate)

	out := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: normalizedRate},
		Data:           make([]int, len(mono)),
		SourceBitDepth: normalizedDepth,
	}
	peak := float64(int64(1)<<(normalizedDepth-1) - 1)
	for i, v := range mono {
		out.Data[i] = int(math.Round(v * peak))
	}

	enc := wav.NewEncoder(w, normalizedRate, normalizedDepth, 1, 1)
	if err := enc.Write(out); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// NormalizeWAVBytes runs NormalizeWAV on an in-memory file. The encoder
// needs a seekable writer, so the result goes through a temporary file.
func NormalizeWAVBytes(b []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "railvoice-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := NormalizeWAV(bytes.NewReader(b), tmp); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(tmp)
}

// resample converts between rates with linear interpolation, which is
// adequate for speech.
func resample(in []float64, from, to int) []float64 {
	if from == to || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	out := make([]float64, int(math.Ceil(float64(len(in))*ratio)))
	for i := range out {
		pos := float64(i) / ratio
		j := int(math.Floor(pos))
		t := pos - float64(j)
		if j+1 < len(in) {
			out[i] = (1-t)*in[j] + t*in[j+1]
		} else {
			out[i] = in[len(in)-1]
		}
	}
	return out
}

func clamp(v float64) float64 {
	return max(-1, min(1, v))
}
