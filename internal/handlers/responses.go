package handlers

import (
	"net/http"

	"finance-tracker/internal/errors"

	"github.com/labstack/echo/v4"
)

// Handlers report failures in one of two ways:
//
//   - SendError for client and business errors (4xx), e.g.
//     SendError(c, errors.ValidationMissingQuery)
//   - SendSystemError for internal failures, which must not leak their cause
//
// GraphQL resolver failures are not HTTP errors; they travel in the
// "errors" array of a 200 response.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok || traceID == "" {
		return "unknown"
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	errorResponse := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	errorResponse, _ := errors.WrapSystemError(err, getTraceID(c))
	return c.JSON(http.StatusInternalServerError, errorResponse)
}
