// Package metrics provides in-memory runtime statistics collection and the
// Prometheus instruments exported on /metrics.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics (only for summarization)
	TotalInputTokens  int64
	TotalOutputTokens int64
	MaxInputTokens    int64
	MaxOutputTokens   int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Failures    int64   `json:"failures"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	// Token stats (nil if the provider never reported usage)
	TotalInputTokens  *int64   `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int64   `json:"total_output_tokens,omitempty"`
	AvgInputTokens    *float64 `json:"avg_input_tokens,omitempty"`
	AvgOutputTokens   *float64 `json:"avg_output_tokens,omitempty"`
	MaxInputTokens    *int64   `json:"max_input_tokens,omitempty"`
	MaxOutputTokens   *int64   `json:"max_output_tokens,omitempty"`
}

// Snapshot represents the process statistics at a point in time.
type Snapshot struct {
	UptimeSeconds   float64            `json:"uptime_seconds"`
	PrimaryLookup   *OperationSnapshot `json:"primary_lookup,omitempty"`
	BrowserFallback *OperationSnapshot `json:"browser_fallback,omitempty"`
	Summarize       *OperationSnapshot `json:"summarize,omitempty"`
	Transcribe      *OperationSnapshot `json:"transcribe,omitempty"`
	Synthesize      *OperationSnapshot `json:"synthesize,omitempty"`
}

// Operation names for the collector.
const (
	OpPrimaryLookup   = "primary_lookup"
	OpBrowserFallback = "browser_fallback"
	OpSummarize       = "summarize"
	OpTranscribe      = "transcribe"
	OpSynthesize      = "synthesize"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe. A nil *Collector discards everything, so
// components can take one optionally.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// record updates count and timing for op and returns its metrics.
// Caller must hold write lock.
func (c *Collector) record(op string, duration time.Duration) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	m.Count++
	m.TotalTime += duration
	m.MinTime = min(m.MinTime, duration)
	m.MaxTime = max(m.MaxTime, duration)
	return m
}

// RecordTiming records timing for an operation. A non-nil err also counts
// as a failure.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.record(op, duration)
	if err != nil {
		m.Failures++
	}
}

// RecordLLMUsage records timing and token usage for a summarization call.
func (c *Collector) RecordLLMUsage(op string, duration time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.record(op, duration)
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
	m.MaxInputTokens = max(m.MaxInputTokens, inputTokens)
	m.MaxOutputTokens = max(m.MaxOutputTokens, outputTokens)
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if m.TotalInputTokens > 0 || m.TotalOutputTokens > 0 {
		totalIn, totalOut := m.TotalInputTokens, m.TotalOutputTokens
		avgIn := float64(totalIn) / float64(m.Count)
		avgOut := float64(totalOut) / float64(m.Count)
		maxIn, maxOut := m.MaxInputTokens, m.MaxOutputTokens

		snap.TotalInputTokens = &totalIn
		snap.TotalOutputTokens = &totalOut
		snap.AvgInputTokens = &avgIn
		snap.AvgOutputTokens = &avgOut
		snap.MaxInputTokens = &maxIn
		snap.MaxOutputTokens = &maxOut
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:   time.Since(c.startTime).Seconds(),
		PrimaryLookup:   snapshotOp(c.ops[OpPrimaryLookup]),
		BrowserFallback: snapshotOp(c.ops[OpBrowserFallback]),
		Summarize:       snapshotOp(c.ops[OpSummarize]),
		Transcribe:      snapshotOp(c.ops[OpTranscribe]),
		Synthesize:      snapshotOp(c.ops[OpSynthesize]),
	}
}
