package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by PrometheusMetrics
const (
	MetricGraphQLOperation    = "graphql_operation"
	MetricTransactionMutation = "transaction_mutation"
	MetricAdviceRequest       = "advice_request"
	MetricAuthEvent           = "authentication_event"
	MetricAdviceGeneration    = "advice_generation"
	MetricGraphQLDuration     = "graphql_request"
	MetricCircuitBreakerState = "circuit_breaker_state"
	MetricTransactionAmount   = "transaction_amount"
)

type PrometheusMetrics struct {
	graphqlOperations         *prometheus.CounterVec
	graphqlDuration           prometheus.Histogram
	transactionMutations      *prometheus.CounterVec
	transactionAmount         *prometheus.HistogramVec
	adviceRequests            *prometheus.CounterVec
	adviceDuration            prometheus.Histogram
	circuitBreakerState       *prometheus.GaugeVec
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the application collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		graphqlOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_operations_total",
				Help: "Total number of GraphQL operations executed",
			},
			[]string{"operation", "status"},
		),
		graphqlDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "graphql_request_duration_seconds",
				Help:    "GraphQL request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		transactionMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transaction_mutations_total",
				Help: "Total number of transaction create, update and delete operations",
			},
			[]string{"operation", "status"},
		),
		transactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transaction_amount",
				Help:    "Amount of created transactions by category",
				Buckets: prometheus.ExponentialBuckets(1, 10, 7),
			},
			[]string{"category"},
		),
		adviceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advice_requests_total",
				Help: "Total number of financial advice requests by outcome",
			},
			[]string{"outcome"},
		),
		adviceDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advice_generation_duration_seconds",
				Help:    "Time spent waiting for the text generation provider",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type", "status"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]
	status := tags["status"]

	switch name {
	case MetricGraphQLOperation:
		m.graphqlOperations.WithLabelValues(operation, status).Inc()
	case MetricTransactionMutation:
		m.transactionMutations.WithLabelValues(operation, status).Inc()
	case MetricAdviceRequest:
		if outcome := tags["outcome"]; outcome != "" {
			m.adviceRequests.WithLabelValues(outcome).Inc()
		}
	case MetricAuthEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType, status).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricAdviceGeneration:
		m.adviceDuration.Observe(duration.Seconds())
	case MetricGraphQLDuration:
		m.graphqlDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricCircuitBreakerState:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	case MetricTransactionAmount:
		m.transactionAmount.WithLabelValues(tags["category"]).Observe(value)
	}
}
