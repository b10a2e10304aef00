package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finance-tracker/internal/config"
	"finance-tracker/internal/services"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type stubHealth struct{ err error }

func (h stubHealth) HealthCheck() error { return h.err }

type ServerTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	sessions  *service_mocks.MockSessionServiceInterface
	cfg       *config.Config
	registry  *prometheus.Registry
	staticDir string
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = service_mocks.NewMockSessionServiceInterface(s.ctrl)

	s.staticDir = s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(s.staticDir, "index.html"), []byte("<html>finance spa</html>"), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(s.staticDir, "app.js"), []byte("console.log('app')"), 0o644))

	s.cfg = config.Default()
	s.cfg.Server.StaticDir = s.staticDir
	s.cfg.Server.CORSAllowOrigins = []string{"http://localhost:5173"}
	s.cfg.Security.RateLimitPerSecond = 100
	s.cfg.Security.RateLimitBurst = 100
	s.cfg.AI.Provider = config.AIProviderDisabled

	s.registry = prometheus.NewRegistry()
}

func (s *ServerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServerTestSuite) newServer(health error) http.Handler {
	srv, err := New(s.cfg, Dependencies{
		Transactions: service_mocks.NewMockTransactionServiceInterface(s.ctrl),
		Statistics:   service_mocks.NewMockStatisticsServiceInterface(s.ctrl),
		Advice:       service_mocks.NewMockAdviceServiceInterface(s.ctrl),
		Auth:         service_mocks.NewMockAuthServiceInterface(s.ctrl),
		Sessions:     s.sessions,
		Metrics:      services.NewPrometheusMetrics(s.registry),
		Health:       stubHealth{err: health},
		Gatherer:     s.registry,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	return srv.Handler()
}

func (s *ServerTestSuite) serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.serve(s.newServer(nil), httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "healthy")
	s.NotEmpty(rec.Header().Get("X-Trace-ID"))
}

func (s *ServerTestSuite) TestHealthDatabaseDown() {
	rec := s.serve(s.newServer(errors.New("connection refused")), httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_003")
}

func (s *ServerTestSuite) TestGraphQLAnonymousQuery() {
	h := s.newServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ authUser { _id } }"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := s.serve(h, req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"data":{"authUser":null}}`, rec.Body.String())
	s.Equal("no-store, no-cache, must-revalidate, private", rec.Header().Get("Cache-Control"))
}

func (s *ServerTestSuite) TestGraphQLInvalidSessionCookie() {
	s.sessions.EXPECT().Validate("stale").Return(nil, services.ErrExpiredToken)

	h := s.newServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ transactions { _id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: s.cfg.Session.CookieName, Value: "stale"})

	rec := s.serve(h, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"message":"Unauthorized"`)
	s.Contains(rec.Body.String(), `"extensions":{"code":"AUTH_003"}`)
}

func (s *ServerTestSuite) TestMetricsEndpoint() {
	h := s.newServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ authUser { _id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	s.serve(h, req)

	rec := s.serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `graphql_operations_total{operation="authUser",status="success"} 1`)
}

func (s *ServerTestSuite) TestStaticAssetAndSPAFallback() {
	h := s.newServer(nil)

	rec := s.serve(h, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "console.log")

	rec = s.serve(h, httptest.NewRequest(http.MethodGet, "/transaction/123", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "finance spa")
}

func (s *ServerTestSuite) TestWithoutStaticDirUnknownRouteIsNotFound() {
	s.cfg.Server.StaticDir = filepath.Join(s.staticDir, "missing")

	rec := s.serve(s.newServer(nil), httptest.NewRequest(http.MethodGet, "/nope", nil))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_004")
}

func (s *ServerTestSuite) TestCORSPreflight() {
	h := s.newServer(nil)
	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := s.serve(h, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func (s *ServerTestSuite) TestCORSRejectsUnknownOrigin() {
	h := s.newServer(nil)
	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := s.serve(h, req)

	s.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *ServerTestSuite) TestRateLimitOnGraphQL() {
	s.cfg.Security.RateLimitPerSecond = 1
	s.cfg.Security.RateLimitBurst = 1
	h := s.newServer(nil)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ authUser { _id } }"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.1.1:5000"
		last = s.serve(h, req)
	}

	s.Equal(http.StatusTooManyRequests, last.Code)
	s.Contains(last.Body.String(), "SYSTEM_006")
}
