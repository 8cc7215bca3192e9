// Package metrics provides Prometheus metrics for the subtitle pipeline.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/devbush/subtranslate/internal/ports"
)

const namespace = "subtranslate"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	StageDuration   *prometheus.HistogramVec
	UploadBytes     prometheus.Counter

	// Translation metrics
	TranslationCalls   *prometheus.CounterVec
	TranslationLatency *prometheus.HistogramVec
	CuesWritten        prometheus.Counter
	PlaceholderCues    prometheus.Counter

	// Cache metrics
	CacheLookups *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Processing requests by origin and outcome",
		}, []string{"origin", "outcome"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End to end processing time of one file",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}, []string{"stage"}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes received through the upload endpoint",
		}),
		TranslationCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_calls_total",
			Help:      "Translation service calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		TranslationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_latency_seconds",
			Help:      "Latency of single translation calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),
		CuesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cues_written_total",
			Help:      "Subtitle cues written to documents",
		}),
		PlaceholderCues: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_cues_total",
			Help:      "Cues that kept their original text after a translation failure",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Transcript cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(origin string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.RequestsTotal.WithLabelValues(origin, outcome).Inc()
	m.RequestDuration.Observe(time.Since(start).Seconds())
}

// instrumentedTranslator counts and times every call of the wrapped translator.
type instrumentedTranslator struct {
	next    ports.Translator
	metrics *Metrics
}

// InstrumentTranslator wraps t so each call is reflected in m.
func InstrumentTranslator(t ports.Translator, m *Metrics) ports.Translator {
	return &instrumentedTranslator{next: t, metrics: m}
}

func (t *instrumentedTranslator) Name() string {
	return t.next.Name()
}

func (t *instrumentedTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	start := time.Now()
	out, err := t.next.Translate(ctx, text, source, target)

	provider := t.next.Name()
	t.metrics.TranslationLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	t.metrics.TranslationCalls.WithLabelValues(provider, outcome).Inc()

	return out, err
}
