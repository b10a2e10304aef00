package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type PrometheusMetricsTestSuite struct {
	suite.Suite
	registry *prometheus.Registry
	metrics  *PrometheusMetrics
}

func (s *PrometheusMetricsTestSuite) SetupTest() {
	s.registry = prometheus.NewRegistry()
	s.metrics = NewPrometheusMetrics(s.registry).(*PrometheusMetrics)
}

func TestPrometheusMetricsSuite(t *testing.T) {
	suite.Run(t, new(PrometheusMetricsTestSuite))
}

func (s *PrometheusMetricsTestSuite) TestIncrementCounter_TransactionMutation() {
	s.metrics.IncrementCounter(MetricTransactionMutation, map[string]string{"operation": "create", "status": "success"})
	s.metrics.IncrementCounter(MetricTransactionMutation, map[string]string{"operation": "create", "status": "success"})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.transactionMutations.WithLabelValues("create", "success")))
}

func (s *PrometheusMetricsTestSuite) TestIncrementCounter_AdviceRequest() {
	s.metrics.IncrementCounter(MetricAdviceRequest, map[string]string{"outcome": "fallback"})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.adviceRequests.WithLabelValues("fallback")))
}

func (s *PrometheusMetricsTestSuite) TestIncrementCounter_AuthEvent() {
	s.metrics.IncrementCounter(MetricAuthEvent, map[string]string{"event_type": "login", "status": "failed"})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.authenticationEventsTotal.WithLabelValues("login", "failed")))
}

func (s *PrometheusMetricsTestSuite) TestIncrementCounter_UnknownNameIgnored() {
	s.metrics.IncrementCounter("unknown", map[string]string{"operation": "x"})

	count, err := testutil.GatherAndCount(s.registry, "graphql_operations_total")
	s.NoError(err)
	s.Equal(0, count)
}

func (s *PrometheusMetricsTestSuite) TestRecordGauge_CircuitBreaker() {
	s.metrics.RecordGauge(MetricCircuitBreakerState, float64(StateOpen), map[string]string{"service": "ai"})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.circuitBreakerState.WithLabelValues("ai")))
}

func (s *PrometheusMetricsTestSuite) TestRecordProcessingTime() {
	s.metrics.RecordProcessingTime(MetricAdviceGeneration, 250*time.Millisecond)
	s.metrics.RecordProcessingTime(MetricGraphQLDuration, 10*time.Millisecond)

	count, err := testutil.GatherAndCount(s.registry, "advice_generation_duration_seconds", "graphql_request_duration_seconds")
	s.NoError(err)
	s.Equal(2, count)
}

func (s *PrometheusMetricsTestSuite) TestSeparateRegistries() {
	s.NotPanics(func() {
		NewPrometheusMetrics(prometheus.NewRegistry())
	})
}
