// Package observe provides application-wide observability primitives for
// guessbot: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all guessbot metrics.
const meterName = "github.com/MrWong99/guessbot"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// STTDuration tracks batch transcription latency.
	STTDuration metric.Float64Histogram

	// OracleDuration tracks oracle call latency. Use with attribute:
	//   attribute.String("op", ...)
	OracleDuration metric.Float64Histogram

	// TTSDuration tracks time to first synthesized audio.
	TTSDuration metric.Float64Histogram

	// RecognitionDuration tracks one full listen: recording plus
	// transcription.
	RecognitionDuration metric.Float64Histogram

	// RoundDuration tracks wall-clock round length. Use with attribute:
	//   attribute.String("outcome", ...)
	RoundDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// RoundsStarted counts rounds begun. Use with attribute:
	//   attribute.String("version", ...)
	RoundsStarted metric.Int64Counter

	// RoundOutcomes counts finished rounds. Use with attribute:
	//   attribute.String("outcome", ...)
	RoundOutcomes metric.Int64Counter

	// SilenceEscalations counts presence checks. Use with attribute:
	//   attribute.String("result", "present"|"absent")
	SilenceEscalations metric.Int64Counter

	// Regenerations counts oracle outputs rejected by moderation.
	Regenerations metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of running game sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) for
// provider and recognition latencies.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30,
}

// roundBuckets defines histogram bucket boundaries (in seconds) for whole
// rounds, which are bounded by the round time limit.
var roundBuckets = []float64{
	10, 30, 60, 90, 120, 180, 300, 600,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("guessbot.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OracleDuration, err = m.Float64Histogram("guessbot.oracle.duration",
		metric.WithDescription("Latency of oracle calls by operation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("guessbot.tts.duration",
		metric.WithDescription("Time to first synthesized audio."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RecognitionDuration, err = m.Float64Histogram("guessbot.recognition.duration",
		metric.WithDescription("Duration of one listen including transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RoundDuration, err = m.Float64Histogram("guessbot.round.duration",
		metric.WithDescription("Wall-clock length of finished rounds."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(roundBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("guessbot.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.RoundsStarted, err = m.Int64Counter("guessbot.rounds.started",
		metric.WithDescription("Total rounds started by game version."),
	); err != nil {
		return nil, err
	}
	if met.RoundOutcomes, err = m.Int64Counter("guessbot.rounds.finished",
		metric.WithDescription("Total rounds finished by outcome."),
	); err != nil {
		return nil, err
	}
	if met.SilenceEscalations, err = m.Int64Counter("guessbot.silence.escalations",
		metric.WithDescription("Total presence checks by result."),
	); err != nil {
		return nil, err
	}
	if met.Regenerations, err = m.Int64Counter("guessbot.oracle.regenerations",
		metric.WithDescription("Total oracle outputs rejected by content moderation."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("guessbot.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("guessbot.active_sessions",
		metric.WithDescription("Number of running game sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("guessbot.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest records a provider request counter increment with
// the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordOracleCall records the latency of one oracle operation.
func (m *Metrics) RecordOracleCall(ctx context.Context, op string, d time.Duration) {
	m.OracleDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

// RecordRoundStart records a started round.
func (m *Metrics) RecordRoundStart(ctx context.Context, version string) {
	m.RoundsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("version", version)))
}

// RecordRoundEnd records a finished round and its duration.
func (m *Metrics) RecordRoundEnd(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.RoundOutcomes.Add(ctx, 1, attrs)
	m.RoundDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPresenceCheck records a presence check and whether the participant
// answered.
func (m *Metrics) RecordPresenceCheck(ctx context.Context, present bool) {
	result := "absent"
	if present {
		result = "present"
	}
	m.SilenceEscalations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
