package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	CompletionRequestsTotal   metric.Int64Counter
	CompletionDurationSeconds metric.Float64Histogram
	ItineraryFallbackTotal    metric.Int64Counter
	PoiQueryDurationSeconds   metric.Float64Histogram
	DbQueryDurationSeconds    metric.Float64Histogram
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed; before that the otel no-op provider is used.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("CultureRoutes")
		var err error
		m := &AppMetrics{}

		m.CompletionRequestsTotal, err = meter.Int64Counter(
			"ai_completion_requests_total",
			metric.WithDescription("Completion calls to the AI provider by provider and outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_completion_requests_total: %v", err)
		}

		m.CompletionDurationSeconds, err = meter.Float64Histogram(
			"ai_completion_duration_seconds",
			metric.WithDescription("Latency of completion calls to the AI provider"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_completion_duration_seconds: %v", err)
		}

		m.ItineraryFallbackTotal, err = meter.Int64Counter(
			"itinerary_fallback_total",
			metric.WithDescription("Itineraries produced by the built-in generator because no provider is configured"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_fallback_total: %v", err)
		}

		m.PoiQueryDurationSeconds, err = meter.Float64Histogram(
			"map_poi_query_duration_seconds",
			metric.WithDescription("Duration of map POI queries including clustering"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create map_poi_query_duration_seconds: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
