package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// NoTransactionsAdvice is returned without contacting the generator when the user has no history.
	NoTransactionsAdvice = "No transactions found. Start by adding some transactions to get financial advice."
	// FallbackAdvice replaces every failure of the advice pipeline.
	FallbackAdvice = "Unable to generate financial advice at this time. Please try again later."

	adviceOutcomeNoData   = "no_data"
	adviceOutcomeSuccess  = "success"
	adviceOutcomeFallback = "fallback"
)

// ErrNonFiniteTotal is returned when summing a history overflows float64.
var ErrNonFiniteTotal = errors.New("transaction total is not finite")

const advicePromptTemplate = `Analyze these financial transactions and provide personalized advice:

Transaction History:
%s

Key Statistics:
- Total Expenses: $%s
- Total Savings: $%s

Please provide specific recommendations on:
1. How to better manage expenses based on spending patterns
2. Debt management strategies if applicable
3. How to optimize savings based on current habits
4. General financial health improvement tips
5. Any red flags in spending behavior

Make the advice practical and actionable. Don't mention that you're an AI - present it as financial insights.
`

// AdviceConfig holds the model and deadline used for each generation call
type AdviceConfig struct {
	Model   string
	Timeout time.Duration
}

// transactionSummary is the per-transaction view embedded in the prompt
type transactionSummary struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	PaymentType string  `json:"paymentType"`
	Date        string  `json:"date"`
}

type adviceService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	generator       TextGenerator
	config          AdviceConfig
	metrics         MetricsRecorderInterface
	audit           AuditLoggerInterface
	logger          *slog.Logger
}

// NewAdviceService creates a new AdviceServiceInterface instance. metrics and
// audit may be nil.
func NewAdviceService(
	transactionRepo repositories.TransactionRepositoryInterface,
	generator TextGenerator,
	config AdviceConfig,
	metrics MetricsRecorderInterface,
	audit AuditLoggerInterface,
	logger *slog.Logger,
) AdviceServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &adviceService{
		transactionRepo: transactionRepo,
		generator:       generator,
		config:          config,
		metrics:         metrics,
		audit:           audit,
		logger:          logger,
	}
}

// GetAdvice returns generated advice for the user's full history. Any failure
// yields FallbackAdvice; nothing is retried.
func (s *adviceService) GetAdvice(ctx context.Context, userID uuid.UUID) string {
	start := time.Now()

	transactions, err := s.transactionRepo.GetByUserID(userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load transactions for advice",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		s.record(ctx, userID, 0, adviceOutcomeFallback, start)
		return FallbackAdvice
	}

	if len(transactions) == 0 {
		s.record(ctx, userID, 0, adviceOutcomeNoData, start)
		return NoTransactionsAdvice
	}

	prompt, err := BuildAdvicePrompt(transactions)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build advice prompt",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		s.record(ctx, userID, len(transactions), adviceOutcomeFallback, start)
		return FallbackAdvice
	}

	genCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	genStart := time.Now()
	text, err := s.generator.Generate(genCtx, s.config.Model, prompt)
	if s.metrics != nil {
		s.metrics.RecordProcessingTime(MetricAdviceGeneration, time.Since(genStart))
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "error generating AI response",
			slog.String("user_id", userID.String()),
			slog.String("model", s.config.Model),
			slog.String("error", err.Error()),
		)
		s.record(ctx, userID, len(transactions), adviceOutcomeFallback, start)
		return FallbackAdvice
	}

	s.record(ctx, userID, len(transactions), adviceOutcomeSuccess, start)
	return text
}

func (s *adviceService) record(ctx context.Context, userID uuid.UUID, count int, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(MetricAdviceRequest, map[string]string{"outcome": outcome})
	}
	if s.audit != nil {
		s.audit.LogAdviceRequested(ctx, userID, count, outcome, time.Since(start).Milliseconds())
	}
}

// BuildAdvicePrompt renders the advice prompt for a non-empty history. The
// history is embedded as two-space indented JSON followed by the expense and
// saving totals.
func BuildAdvicePrompt(transactions []models.Transaction) (string, error) {
	summary := make([]transactionSummary, 0, len(transactions))
	var totalExpenses, totalSavings float64

	for _, tx := range transactions {
		summary = append(summary, transactionSummary{
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
			PaymentType: tx.PaymentType,
			Date:        tx.FormattedDate(),
		})

		switch tx.Category {
		case models.CategoryExpense:
			totalExpenses += tx.Amount
		case models.CategorySaving:
			totalSavings += tx.Amount
		}
	}

	if !isFinite(totalExpenses) || !isFinite(totalSavings) {
		return "", ErrNonFiniteTotal
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return "", fmt.Errorf("failed to encode transaction summary: %w", err)
	}

	return fmt.Sprintf(advicePromptTemplate,
		strings.TrimRight(buf.String(), "\n"),
		formatMoney(totalExpenses),
		formatMoney(totalSavings),
	), nil
}

func formatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
