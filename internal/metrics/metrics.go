package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SearchDuration tracks in-memory retrieval latency.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pawfect",
			Name:      "search_duration_seconds",
			Help:      "Retrieval query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// SearchResults tracks how many documents each query returned.
	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pawfect",
			Name:      "search_results",
			Help:      "Number of documents returned per retrieval query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	// LLMRequestDuration tracks answer generation latency per provider.
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pawfect",
			Name:      "llm_request_duration_seconds",
			Help:      "Answer generation duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// AsksTotal counts answered questions by outcome.
	AsksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawfect",
			Name:      "asks_total",
			Help:      "Total number of questions by outcome",
		},
		[]string{"status"},
	)

	// FeedbackTotal counts feedback by polarity.
	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawfect",
			Name:      "feedback_total",
			Help:      "Total number of feedback submissions",
		},
		[]string{"value"},
	)
)

func init() {
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(AsksTotal)
	prometheus.MustRegister(FeedbackTotal)
}

// FeedbackLabel maps a feedback value to its metric label.
func FeedbackLabel(value int) string {
	if value > 0 {
		return "positive"
	}
	return "negative"
}
