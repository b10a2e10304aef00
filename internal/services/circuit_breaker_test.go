package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite
	breaker CircuitBreakerInterface
}

func (s *CircuitBreakerTestSuite) SetupTest() {
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    50 * time.Millisecond,
		HalfOpenMaxSucc: 1,
	})
}

func TestCircuitBreakerSuite(t *testing.T) {
	suite.Run(t, new(CircuitBreakerTestSuite))
}

func (s *CircuitBreakerTestSuite) TestOpensAfterMaxFailures() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.False(s.breaker.IsOpen())
	s.Equal(2, s.breaker.GetFailureCount())

	s.breaker.RecordFailure()
	s.True(s.breaker.IsOpen())
	s.Equal(StateOpen, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestSuccessResetsFailures() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()

	s.Equal(0, s.breaker.GetFailureCount())
	s.Equal(StateClosed, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenAfterTimeout() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	s.True(s.breaker.IsOpen())

	time.Sleep(60 * time.Millisecond)

	s.False(s.breaker.IsOpen())
	s.Equal(StateHalfOpen, s.breaker.GetState())

	s.breaker.RecordSuccess()
	s.Equal(StateClosed, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenFailureReopens() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	time.Sleep(60 * time.Millisecond)
	s.False(s.breaker.IsOpen())

	s.breaker.RecordFailure()
	s.Equal(StateOpen, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestReset() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	s.breaker.Reset()

	s.False(s.breaker.IsOpen())
	s.Equal(0, s.breaker.GetFailureCount())
}

func (s *CircuitBreakerTestSuite) TestStateString() {
	s.Equal("closed", StateClosed.String())
	s.Equal("open", StateOpen.String())
	s.Equal("half_open", StateHalfOpen.String())
}

func (s *CircuitBreakerTestSuite) TestGenerator_ShortCircuitsWhenOpen() {
	ctrl := gomock.NewController(s.T())
	inner := service_mocks.NewMockTextGenerator(ctrl)
	audit := service_mocks.NewMockAuditLoggerInterface(ctrl)
	gen := NewCircuitBreakingGenerator(inner, s.breaker, "ai", nil, audit)

	inner.EXPECT().Generate(gomock.Any(), "m", "p").Return("", errors.New("boom")).Times(3)
	audit.EXPECT().LogCircuitBreakerStateChange(gomock.Any(), "ai", "closed", "open").Times(1)

	for i := 0; i < 3; i++ {
		_, err := gen.Generate(context.Background(), "m", "p")
		s.Error(err)
	}

	_, err := gen.Generate(context.Background(), "m", "p")
	s.ErrorIs(err, ErrCircuitBreakerOpen)
}

func (s *CircuitBreakerTestSuite) TestGenerator_PassesThroughSuccess() {
	ctrl := gomock.NewController(s.T())
	inner := service_mocks.NewMockTextGenerator(ctrl)
	gen := NewCircuitBreakingGenerator(inner, s.breaker, "ai", nil, nil)

	inner.EXPECT().Generate(gomock.Any(), "m", "p").Return("advice", nil)

	text, err := gen.Generate(context.Background(), "m", "p")
	s.NoError(err)
	s.Equal("advice", text)
}

func (s *CircuitBreakerTestSuite) TestGenerator_CallerCancellationIsNotAFailure() {
	ctrl := gomock.NewController(s.T())
	inner := service_mocks.NewMockTextGenerator(ctrl)
	gen := NewCircuitBreakingGenerator(inner, s.breaker, "ai", nil, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	inner.EXPECT().Generate(cancelled, "m", "p").Return("", context.Canceled).Times(5)
	for i := 0; i < 5; i++ {
		_, err := gen.Generate(cancelled, "m", "p")
		s.ErrorIs(err, context.Canceled)
	}

	s.Equal(StateClosed, s.breaker.GetState())
	s.Equal(0, s.breaker.GetFailureCount())

	inner.EXPECT().Generate(gomock.Any(), "m", "p").Return("advice", nil)
	text, err := gen.Generate(context.Background(), "m", "p")
	s.NoError(err)
	s.Equal("advice", text)
}

func (s *CircuitBreakerTestSuite) TestGenerator_ExpiredDeadlineIsAFailure() {
	ctrl := gomock.NewController(s.T())
	inner := service_mocks.NewMockTextGenerator(ctrl)
	gen := NewCircuitBreakingGenerator(inner, s.breaker, "ai", nil, nil)

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	inner.EXPECT().Generate(expired, "m", "p").Return("", context.DeadlineExceeded)

	_, err := gen.Generate(expired, "m", "p")
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(1, s.breaker.GetFailureCount())
}
