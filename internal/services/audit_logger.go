package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type correlationIDKey struct{}

// WithCorrelationID stores the request trace id so audit events can be joined
// with access logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogTransactionCreated(ctx context.Context, userID, transactionID uuid.UUID, category string, amount float64) {
	al.logger.InfoContext(ctx, "transaction created",
		slog.String("event_type", "transaction_created"),
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.String("category", category),
		slog.Float64("amount", amount),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransactionUpdated(ctx context.Context, callerID, transactionID uuid.UUID) {
	al.logger.InfoContext(ctx, "transaction updated",
		slog.String("event_type", "transaction_updated"),
		slog.String("user_id", callerID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransactionDeleted(ctx context.Context, callerID, transactionID uuid.UUID) {
	al.logger.InfoContext(ctx, "transaction deleted",
		slog.String("event_type", "transaction_deleted"),
		slog.String("user_id", callerID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

// LogForeignTransactionAccess records a by-id operation on a transaction the
// caller does not own. callerID is uuid.Nil for anonymous callers.
func (al *AuditLogger) LogForeignTransactionAccess(ctx context.Context, callerID, ownerID, transactionID uuid.UUID, operation string, enforced bool) {
	al.logger.WarnContext(ctx, "transaction accessed by non-owner",
		slog.String("event_type", "foreign_transaction_access"),
		slog.String("user_id", callerID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.String("operation", operation),
		slog.Bool("blocked", enforced),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAuthEvent(ctx context.Context, event string, userID uuid.UUID, username string, success bool, reason string) {
	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("event_type", event),
		slog.String("username", username),
		slog.Bool("success", success),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	}
	if userID != uuid.Nil {
		attrs = append(attrs, slog.String("user_id", userID.String()))
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}

	al.logger.LogAttrs(ctx, level, "authentication event", attrs...)
}

func (al *AuditLogger) LogAdviceRequested(ctx context.Context, userID uuid.UUID, transactionCount int, outcome string, durationMs int64) {
	al.logger.InfoContext(ctx, "financial advice requested",
		slog.String("event_type", "advice_requested"),
		slog.String("user_id", userID.String()),
		slog.Int("transaction_count", transactionCount),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
	)
}

// CorrelationID returns the trace id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return correlationID
	}

	return ""
}
