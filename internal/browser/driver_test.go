package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantPacer() *Pacer {
	return &Pacer{
		float: func() float64 { return 0.5 },
		sleep: func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	}
}

// countingLauncher hands out plain contexts that chromedp rejects, so every
// lookup fails at its first browser action, and counts sessions.
type countingLauncher struct {
	acquired atomic.Int32
	released atomic.Int32
	err      error
}

func (l *countingLauncher) launch(ctx context.Context) (context.Context, func(), error) {
	if l.err != nil {
		return nil, nil, l.err
	}
	l.acquired.Add(1)
	ctx, cancel := context.WithCancel(ctx)
	return ctx, func() {
		cancel()
		l.released.Add(1)
	}, nil
}

func TestFirstMatchShortCircuits(t *testing.T) {
	strategies := DefaultInputStrategies()
	var tried []string

	got, err := firstMatch(context.Background(), strategies, time.Second, func(_ context.Context, s Strategy) error {
		tried = append(tried, s.Name)
		if s.Name == "placeholder" {
			return nil
		}
		return errors.New("not found")
	})

	require.NoError(t, err)
	assert.Equal(t, "placeholder", got.Name)
	assert.Equal(t, []string{"name", "id", "placeholder"}, tried)
}

func TestFirstMatchExhausted(t *testing.T) {
	var attempts int
	_, err := firstMatch(context.Background(), DefaultSubmitStrategies(), time.Second, func(ctx context.Context, s Strategy) error {
		attempts++
		_, ok := ctx.Deadline()
		assert.True(t, ok, "each strategy gets a bounded wait")
		return context.DeadlineExceeded
	})

	require.Error(t, err)
	assert.Equal(t, len(DefaultSubmitStrategies()), attempts)
	assert.Contains(t, err.Error(), "any-button")
}

func TestFirstMatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts int

	_, err := firstMatch(ctx, DefaultInputStrategies(), time.Second, func(context.Context, Strategy) error {
		attempts++
		cancel()
		return errors.New("not found")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestFirstMatchNoStrategies(t *testing.T) {
	_, err := firstMatch(context.Background(), nil, time.Second, func(context.Context, Strategy) error { return nil })
	assert.Error(t, err)
}

func TestPacerDrawsWithinBounds(t *testing.T) {
	s := span{50 * time.Millisecond, 150 * time.Millisecond}

	low := &Pacer{float: func() float64 { return 0 }}
	assert.Equal(t, s.lo, low.draw(s))

	high := &Pacer{float: func() float64 { return 0.999999 }}
	assert.Less(t, high.draw(s), s.hi)
	assert.GreaterOrEqual(t, high.draw(s), s.lo)

	p := NewPacer()
	seen := map[time.Duration]bool{}
	for range 200 {
		d := p.draw(resultsDwell)
		assert.GreaterOrEqual(t, d, resultsDwell.lo)
		assert.LessOrEqual(t, d, resultsDwell.hi)
		seen[d] = true
	}
	assert.Greater(t, len(seen), 1, "pauses must not collapse to a fixed interval")
}

func TestPauseHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := NewPacer().pause(ctx, resultsDwell)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchReleasesSessionOnFailure(t *testing.T) {
	launcher := &countingLauncher{}
	dir := t.TempDir()
	d := New(Options{DebugDir: dir}, nil, WithLauncher(launcher.launch), WithPacer(instantPacer()))

	page, err := d.Fetch(context.Background(), "2608290686")

	assert.Nil(t, page)
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	assert.Equal(t, int32(1), launcher.acquired.Load())
	assert.Equal(t, int32(1), launcher.released.Load())

	// The screenshot could not be taken; that must not add a second error.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestFetchConcurrentSessionsAreIsolated(t *testing.T) {
	launcher := &countingLauncher{}
	d := New(Options{}, nil, WithLauncher(launcher.launch), WithPacer(instantPacer()))

	const n = 8
	errs := make(chan error, n)
	for range n {
		go func() {
			_, err := d.Fetch(context.Background(), "2608290686")
			errs <- err
		}()
	}
	for range n {
		assert.Error(t, <-errs)
	}

	assert.Equal(t, int32(n), launcher.acquired.Load())
	assert.Equal(t, int32(n), launcher.released.Load())
}

func TestFetchInvalidPNRNeverLaunches(t *testing.T) {
	launcher := &countingLauncher{}
	d := New(Options{}, nil, WithLauncher(launcher.launch))

	_, err := d.Fetch(context.Background(), "26082906")
	assert.ErrorIs(t, err, models.ErrInvalidPNR)
	assert.Zero(t, launcher.acquired.Load())
}

func TestFetchLaunchFailure(t *testing.T) {
	launcher := &countingLauncher{err: errors.New("chrome not found")}
	d := New(Options{}, nil, WithLauncher(launcher.launch))

	_, err := d.Fetch(context.Background(), "2608290686")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestSaveHTML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	d := New(Options{DebugDir: dir}, nil)

	d.saveHTML(d.logger, "abc", "<html></html>")

	data, err := os.ReadFile(filepath.Join(dir, "abc-page.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestNewAppliesDefaults(t *testing.T) {
	d := New(Options{}, nil)
	assert.Equal(t, DefaultURL, d.opts.URL)
	assert.Equal(t, DefaultUserAgent, d.opts.UserAgent)
	assert.Equal(t, DefaultElementWait, d.opts.ElementWait)
	assert.Equal(t, DefaultErrorPhrases(), d.opts.ErrorPhrases)
	assert.Len(t, d.opts.InputStrategies, 5)
	assert.Len(t, d.opts.SubmitStrategies, 5)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("Oops. Something went wrong here", DefaultErrorPhrases()))
	assert.True(t, containsAny("Sorry! try again", DefaultErrorPhrases()))
	assert.False(t, containsAny("Chart prepared", DefaultErrorPhrases()))
	assert.False(t, containsAny("anything", []string{""}))
}
