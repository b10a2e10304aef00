package handlers

import (
	"net/http"
	"time"

	"finance-tracker/internal/errors"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck() error
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db         HealthChecker
	aiProvider string
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db HealthChecker, aiProvider string) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, aiProvider: aiProvider}
}

// HealthCheck reports API and database status. The AI provider is listed for
// information only; advice degrades to a fallback message when it is down.
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	if err := h.db.HealthCheck(); err != nil {
		return SendError(c, errors.SystemServiceUnavailable,
			errors.WithDetails("Database connection failed"),
		)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":      "healthy",
		"ai_provider": h.aiProvider,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
