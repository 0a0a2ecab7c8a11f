package browser

import (
	"context"
	"math/rand/v2"
	"time"
)

// span is a closed delay interval; each pause draws uniformly from it.
type span struct {
	lo, hi time.Duration
}

// Human pacing. These stay randomized: fixed intervals are a bot signal.
var (
	arrivalPause   = span{2 * time.Second, 4 * time.Second}
	preTypePause   = span{300 * time.Millisecond, 700 * time.Millisecond}
	keystrokePause = span{50 * time.Millisecond, 150 * time.Millisecond}
	postTypePause  = span{500 * time.Millisecond, 1500 * time.Millisecond}
	preClickPause  = span{300 * time.Millisecond, 700 * time.Millisecond}
	resultsDwell   = span{8 * time.Second, 10 * time.Second}
	scrollDownWait = span{2500 * time.Millisecond, 3500 * time.Millisecond}
	scrollUpWait   = span{1500 * time.Millisecond, 2500 * time.Millisecond}
)

// Pacer produces randomized human-like pauses.
type Pacer struct {
	float func() float64
	sleep func(context.Context, time.Duration) error
}

// NewPacer returns a pacer backed by math/rand/v2 and real sleeps.
func NewPacer() *Pacer {
	return &Pacer{float: rand.Float64, sleep: sleepCtx}
}

func (p *Pacer) draw(s span) time.Duration {
	if s.hi <= s.lo {
		return s.lo
	}
	return s.lo + time.Duration(p.float()*float64(s.hi-s.lo))
}

// pause sleeps for a random duration within s, or until ctx is done.
func (p *Pacer) pause(ctx context.Context, s span) error {
	return p.sleep(ctx, p.draw(s))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
