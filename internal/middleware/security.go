package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// spaContentSecurityPolicy lets the bundled frontend load its own assets and
// the generated avatar images, and talk to /graphql on the same origin.
const spaContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self'; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; " +
	"font-src 'self' data:; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"

// SecurityHeaders adds security headers to responses. API responses are never
// cached; static frontend assets keep their default caching.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

			if isAPIPath(c.Request().URL.Path) {
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			} else {
				h.Set("Content-Security-Policy", spaContentSecurityPolicy)
			}

			return next(c)
		}
	}
}

func isAPIPath(path string) bool {
	for _, prefix := range []string{"/graphql", "/health", "/metrics"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
