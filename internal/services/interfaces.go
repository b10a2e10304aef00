package services

import (
	"context"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
)

// StatisticsServiceInterface provides per-category totals of a user's transactions
type StatisticsServiceInterface interface {
	GetCategoryStatistics(userID uuid.UUID) ([]models.CategoryStatistic, error)
}

// AdviceServiceInterface composes financial advice from a user's history.
// It never fails: errors are replaced by a fixed fallback message.
type AdviceServiceInterface interface {
	GetAdvice(ctx context.Context, userID uuid.UUID) string
}

// TextGenerator produces text from a prompt using the given model
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// TransactionServiceInterface provides transaction CRUD for the API layer
type TransactionServiceInterface interface {
	ListForUser(userID uuid.UUID) ([]models.Transaction, error)
	Get(ctx context.Context, caller auth.Principal, transactionID uuid.UUID) (*models.Transaction, error)
	Create(ctx context.Context, userID uuid.UUID, input dto.CreateTransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, caller auth.Principal, input dto.UpdateTransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, caller auth.Principal, transactionID uuid.UUID) (*models.Transaction, error)
}

// AuthServiceInterface handles sign-up, login and user lookups
type AuthServiceInterface interface {
	SignUp(ctx context.Context, input dto.SignUpInput) (*models.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*models.User, error)
	GetUser(userID uuid.UUID) (*models.User, error)
}

// SessionServiceInterface issues, validates and revokes session tokens
type SessionServiceInterface interface {
	Issue(user *models.User) (token string, expiresAt time.Time, err error)
	Validate(token string) (*models.SessionClaims, error)
	Revoke(ctx context.Context, principal auth.Authenticated) error
}

// PasswordServiceInterface hashes and verifies passwords
type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// MetricsRecorderInterface records application metrics
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// TransactionGeneratorInterface generates realistic transaction data for demo accounts
type TransactionGeneratorInterface interface {
	GenerateTransactions(userID uuid.UUID, count int, start, end time.Time) []models.Transaction
}

// AuditLoggerInterface emits structured audit events
type AuditLoggerInterface interface {
	LogTransactionCreated(ctx context.Context, userID, transactionID uuid.UUID, category string, amount float64)
	LogTransactionUpdated(ctx context.Context, callerID, transactionID uuid.UUID)
	LogTransactionDeleted(ctx context.Context, callerID, transactionID uuid.UUID)
	LogForeignTransactionAccess(ctx context.Context, callerID, ownerID, transactionID uuid.UUID, operation string, enforced bool)
	LogAuthEvent(ctx context.Context, event string, userID uuid.UUID, username string, success bool, reason string)
	LogAdviceRequested(ctx context.Context, userID uuid.UUID, transactionCount int, outcome string, durationMs int64)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() CircuitBreakerState
	Reset()
	GetFailureCount() int
}
