package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpPrimaryLookup, 100*time.Millisecond, nil)
	c.RecordTiming(OpPrimaryLookup, 300*time.Millisecond, errors.New("miss"))

	snap := c.Snapshot()
	require.NotNil(t, snap.PrimaryLookup)
	assert.Equal(t, int64(2), snap.PrimaryLookup.Count)
	assert.Equal(t, int64(1), snap.PrimaryLookup.Failures)
	assert.Equal(t, int64(100), snap.PrimaryLookup.MinTimeMs)
	assert.Equal(t, int64(300), snap.PrimaryLookup.MaxTimeMs)
	assert.InDelta(t, 200.0, snap.PrimaryLookup.AvgTimeMs, 0.01)
	assert.Nil(t, snap.PrimaryLookup.TotalInputTokens)
	assert.Nil(t, snap.BrowserFallback)
}

func TestRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpSummarize, time.Second, 400, 60)
	c.RecordLLMUsage(OpSummarize, time.Second, 200, 40)

	snap := c.Snapshot().Summarize
	require.NotNil(t, snap)
	require.NotNil(t, snap.TotalInputTokens)
	assert.Equal(t, int64(600), *snap.TotalInputTokens)
	assert.Equal(t, int64(100), *snap.TotalOutputTokens)
	assert.Equal(t, int64(400), *snap.MaxInputTokens)
	assert.InDelta(t, 50.0, *snap.AvgOutputTokens, 0.01)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpTranscribe, time.Second, nil)
	c.RecordLLMUsage(OpSummarize, time.Second, 1, 1)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpBrowserFallback, time.Millisecond, nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Snapshot().BrowserFallback.Count)
}
