package middleware

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Session resolves the session cookie into an auth.Principal and stores it in
// the request context. Requests without a usable session continue as
// auth.Anonymous; resolvers decide whether that is acceptable.
func Session(cookieName string, sessions services.SessionServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			var principal auth.Principal = auth.Anonymous{}

			if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
				principal = resolveSession(c, sessions, cookie.Value)
			}

			c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

func resolveSession(c echo.Context, sessions services.SessionServiceInterface, token string) auth.Principal {
	claims, err := sessions.Validate(token)
	if err != nil {
		level := slog.LevelDebug
		if !stderrors.Is(err, services.ErrExpiredToken) && !stderrors.Is(err, services.ErrRevokedToken) {
			level = slog.LevelWarn
		}
		slog.Log(c.Request().Context(), level, "ignoring session cookie",
			"trace_id", GetTraceID(c),
			"error", err,
		)
		return auth.Anonymous{Rejected: err}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return auth.Anonymous{Rejected: fmt.Errorf("%w: user id: %w", services.ErrInvalidToken, err)}
	}

	return auth.Authenticated{
		UserID:   userID,
		Username: claims.Username,
		TokenID:  claims.ID,
		Token:    token,
	}
}
