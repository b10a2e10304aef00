package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo       *echo.Echo
	logs       *bytes.Buffer
	prevLogger *slog.Logger
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
	s.logs = &bytes.Buffer{}
	s.prevLogger = slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(s.logs, nil)))
}

func (s *PanicRecoveryTestSuite) TearDownTest() {
	slog.SetDefault(s.prevLogger)
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) newContext(principal auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

// recoveredEntry returns the decoded "panic recovered" log line.
func (s *PanicRecoveryTestSuite) recoveredEntry() map[string]any {
	for _, line := range bytes.Split(bytes.TrimSpace(s.logs.Bytes()), []byte("\n")) {
		entry := map[string]any{}
		s.Require().NoError(json.Unmarshal(line, &entry))
		if entry["msg"] == "panic recovered" {
			return entry
		}
	}
	s.FailNow("no panic recovered entry logged", s.logs.String())
	return nil
}

func (s *PanicRecoveryTestSuite) TestRecoverFromPanic() {
	c, rec := s.newContext(nil)
	c.Set(TraceIDContextKey, "test-trace-id")

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("resolver blew up")
	})

	s.NotPanics(func() { _ = handler(c) })

	s.Equal(http.StatusInternalServerError, rec.Code)
	var errorResponse errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &errorResponse))
	s.Equal("SYSTEM_001", errorResponse.Error.Code)
	s.Equal("test-trace-id", errorResponse.Error.TraceID)

	entry := s.recoveredEntry()
	s.Equal("resolver blew up", entry["panic"])
	s.Equal("/graphql", entry["path"])
	s.NotEmpty(entry["stack_trace"])
}

func (s *PanicRecoveryTestSuite) TestNoTraceID() {
	c, rec := s.newContext(nil)

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("test panic")
	})

	s.NotPanics(func() { _ = handler(c) })

	var errorResponse errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &errorResponse))
	s.Equal("unknown", errorResponse.Error.TraceID)
	s.Equal("unknown", s.recoveredEntry()["trace_id"])
}

func (s *PanicRecoveryTestSuite) TestLogsAuthenticatedUserID() {
	userID := uuid.New()
	c, _ := s.newContext(auth.Authenticated{UserID: userID, Username: "alice"})

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("test panic")
	})
	_ = handler(c)

	s.Equal(userID.String(), s.recoveredEntry()["user_id"])
}

func (s *PanicRecoveryTestSuite) TestAnonymousCallerHasNoUserID() {
	c, _ := s.newContext(auth.Anonymous{})

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("test panic")
	})
	_ = handler(c)

	s.NotContains(s.recoveredEntry(), "user_id")
}

func (s *PanicRecoveryTestSuite) TestCommittedResponseLeftAlone() {
	c, rec := s.newContext(nil)

	handler := PanicRecovery()(func(c echo.Context) error {
		if err := c.String(http.StatusOK, "partial"); err != nil {
			return err
		}
		panic("after write")
	})

	s.NotPanics(func() { _ = handler(c) })

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("partial", rec.Body.String())
	s.Equal("after write", s.recoveredEntry()["panic"])
}

func (s *PanicRecoveryTestSuite) TestNormalFlow() {
	c, rec := s.newContext(nil)

	handler := PanicRecovery()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.NoError(handler(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Empty(s.logs.String())
}

func (s *PanicRecoveryTestSuite) TestDifferentPanicValues() {
	testCases := []struct {
		name      string
		panicWith interface{}
	}{
		{"string", "string panic"},
		{"int", 42},
		{"struct", struct{ msg string }{"boom"}},
		{"nil", nil},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			c, rec := s.newContext(nil)

			handler := PanicRecovery()(func(c echo.Context) error {
				panic(tc.panicWith)
			})

			s.NotPanics(func() { _ = handler(c) })
			s.Equal(http.StatusInternalServerError, rec.Code)
		})
	}
}
