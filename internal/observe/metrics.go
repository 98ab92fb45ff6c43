// Package observe provides application-wide observability primitives for
// Lampoon: OpenTelemetry metrics, tracing, and structured logging helpers.
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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Lampoon metrics.
const meterName = "github.com/skitlabs/lampoon"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// GenerationDuration tracks end-to-end scene generation latency. Use with
	// attribute:
	//   attribute.String("stage", "scenario"|"refinement")
	GenerationDuration metric.Float64Histogram

	// ProviderRequests counts completion API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderRetries counts retried completion attempts. Use with attribute:
	//   attribute.String("provider", ...)
	ProviderRetries metric.Int64Counter

	// CacheLookups counts response-cache gets. Use with attributes:
	//   attribute.String("namespace", ...), attribute.String("result", "hit"|"miss")
	CacheLookups metric.Int64Counter

	// ScenesGenerated counts scenes produced from scratch (cache misses that
	// completed successfully).
	ScenesGenerated metric.Int64Counter

	// SceneRevisions counts adopted refinement results.
	SceneRevisions metric.Int64Counter

	// ArchiveFailures counts failed archive appends. Archiving is best-effort,
	// so failures surface here and in logs rather than as errors.
	ArchiveFailures metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// text-completion latencies, which run from sub-second cache hits to
// multi-minute long-form generations.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.GenerationDuration, err = m.Float64Histogram("lampoon.generation.duration",
		metric.WithDescription("End-to-end scene generation latency by stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("lampoon.provider.requests",
		metric.WithDescription("Total completion API requests by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRetries, err = m.Int64Counter("lampoon.provider.retries",
		metric.WithDescription("Total retried completion attempts by provider."),
	); err != nil {
		return nil, err
	}
	if met.CacheLookups, err = m.Int64Counter("lampoon.cache.lookups",
		metric.WithDescription("Total response-cache lookups by namespace and result."),
	); err != nil {
		return nil, err
	}
	if met.ScenesGenerated, err = m.Int64Counter("lampoon.scenes.generated",
		metric.WithDescription("Total scenes generated from scratch."),
	); err != nil {
		return nil, err
	}
	if met.SceneRevisions, err = m.Int64Counter("lampoon.scenes.revisions",
		metric.WithDescription("Total adopted scene refinements."),
	); err != nil {
		return nil, err
	}
	if met.ArchiveFailures, err = m.Int64Counter("lampoon.archive.failures",
		metric.WithDescription("Total failed archive appends."),
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
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// RecordGeneration records one end-to-end generation with the standard stage
// attribute.
func (m *Metrics) RecordGeneration(ctx context.Context, stage string, seconds float64) {
	m.GenerationDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordProviderRequest records one completion API call with the standard
// attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordProviderRetry records one retried completion attempt.
func (m *Metrics) RecordProviderRetry(ctx context.Context, provider string) {
	m.ProviderRetries.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordCacheLookup records one response-cache lookup with its outcome.
func (m *Metrics) RecordCacheLookup(ctx context.Context, namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("namespace", namespace),
			attribute.String("result", result),
		),
	)
}

// RecordArchiveFailure records one failed archive append.
func (m *Metrics) RecordArchiveFailure(ctx context.Context) {
	m.ArchiveFailures.Add(ctx, 1)
}
