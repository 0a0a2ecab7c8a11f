package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeDegraded  = "degraded"
	OutcomeInvalid   = "invalid_pnr"
	OutcomeExhausted = "all_sources_exhausted"

	SourceNone = "none"
)

// Tier labels.
const (
	TierPrimary      = "primary"
	TierBrowser      = "browser"
	TierSummarize    = "summarize"
	TierSpeechToText = "speech_to_text"
	TierTextToSpeech = "text_to_speech"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railvoice_resolutions_total",
		Help: "PNR resolutions by winning source and outcome",
	}, []string{"source", "outcome"})

	tierDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "railvoice_tier_duration_seconds",
		Help:    "Time spent in each resolution tier or external service",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"tier"})
)

// ObserveResolution counts one finished resolution.
func ObserveResolution(source, outcome string) {
	resolutionsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveTier records how long a tier took.
func ObserveTier(tier string, d time.Duration) {
	tierDuration.WithLabelValues(tier).Observe(d.Seconds())
}
