package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransactionInput = errors.New("invalid transaction input")
	ErrTransactionForbidden    = errors.New("transaction belongs to another user")
)

// TransactionServiceConfig controls ownership enforcement on by-id operations
type TransactionServiceConfig struct {
	// EnforceOwnership rejects get/update/delete by id when the caller does
	// not own the transaction. When false such access is only audited.
	EnforceOwnership bool
}

type transactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	audit           AuditLoggerInterface
	metrics         MetricsRecorderInterface
	config          TransactionServiceConfig
	validator       *validation.Validator
}

// NewTransactionService creates a new TransactionServiceInterface instance
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	audit AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	config TransactionServiceConfig,
) TransactionServiceInterface {
	return &transactionService{
		transactionRepo: transactionRepo,
		audit:           audit,
		metrics:         metrics,
		config:          config,
		validator:       validation.GetValidator(),
	}
}

// ListForUser returns the user's transactions, newest date first
func (s *transactionService) ListForUser(userID uuid.UUID) ([]models.Transaction, error) {
	return s.transactionRepo.GetByUserID(userID)
}

// Get retrieves a single transaction by id
func (s *transactionService) Get(ctx context.Context, caller auth.Principal, transactionID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwnership(ctx, caller, tx, "get"); err != nil {
		return nil, err
	}

	return tx, nil
}

// Create validates the input and stores a new transaction owned by userID
func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, input dto.CreateTransactionInput) (*models.Transaction, error) {
	if err := s.validator.Struct(input); err != nil {
		s.countMutation("create", "invalid")
		return nil, invalidInput(err)
	}

	date, err := models.ParseDate(input.Date)
	if err != nil {
		s.countMutation("create", "invalid")
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransactionInput, err)
	}

	tx := &models.Transaction{
		UserID:      userID,
		Description: input.Description,
		PaymentType: input.PaymentType,
		Category:    input.Category,
		Amount:      input.Amount,
		Location:    strings.TrimSpace(input.Location),
		Date:        date,
	}
	if tx.Location == "" {
		tx.Location = models.DefaultLocation
	}

	if err := s.transactionRepo.Create(tx); err != nil {
		s.countMutation("create", "failed")
		return nil, err
	}

	s.countMutation("create", "success")
	if s.metrics != nil {
		s.metrics.RecordGauge(MetricTransactionAmount, tx.Amount, map[string]string{"category": tx.Category})
	}
	s.audit.LogTransactionCreated(ctx, userID, tx.ID, tx.Category, tx.Amount)

	return tx, nil
}

// Update applies the non-nil fields of input and returns the stored result
func (s *transactionService) Update(ctx context.Context, caller auth.Principal, input dto.UpdateTransactionInput) (*models.Transaction, error) {
	if err := s.validator.Struct(input); err != nil {
		s.countMutation("update", "invalid")
		return nil, invalidInput(err)
	}

	id, err := uuid.Parse(input.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransactionInput, err)
	}

	tx, err := s.transactionRepo.GetByID(id)
	if err != nil {
		s.countMutation("update", "failed")
		return nil, err
	}

	if err := s.checkOwnership(ctx, caller, tx, "update"); err != nil {
		s.countMutation("update", "forbidden")
		return nil, err
	}

	if err := applyTransactionUpdate(tx, input); err != nil {
		s.countMutation("update", "invalid")
		return nil, err
	}

	if err := s.transactionRepo.Update(tx); err != nil {
		s.countMutation("update", "failed")
		return nil, err
	}

	s.countMutation("update", "success")
	callerID, _ := auth.UserID(caller)
	s.audit.LogTransactionUpdated(ctx, callerID, tx.ID)

	return tx, nil
}

// Delete removes the transaction and returns it as it was before deletion
func (s *transactionService) Delete(ctx context.Context, caller auth.Principal, transactionID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		s.countMutation("delete", "failed")
		return nil, err
	}

	if err := s.checkOwnership(ctx, caller, tx, "delete"); err != nil {
		s.countMutation("delete", "forbidden")
		return nil, err
	}

	if err := s.transactionRepo.Delete(transactionID); err != nil {
		s.countMutation("delete", "failed")
		return nil, err
	}

	s.countMutation("delete", "success")
	callerID, _ := auth.UserID(caller)
	s.audit.LogTransactionDeleted(ctx, callerID, tx.ID)

	return tx, nil
}

func (s *transactionService) checkOwnership(ctx context.Context, caller auth.Principal, tx *models.Transaction, operation string) error {
	callerID, ok := auth.UserID(caller)
	if ok && callerID == tx.UserID {
		return nil
	}

	s.audit.LogForeignTransactionAccess(ctx, callerID, tx.UserID, tx.ID, operation, s.config.EnforceOwnership)

	if s.config.EnforceOwnership {
		return ErrTransactionForbidden
	}
	return nil
}

func (s *transactionService) countMutation(operation, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(MetricTransactionMutation, map[string]string{
		"operation": operation,
		"status":    status,
	})
}

func applyTransactionUpdate(tx *models.Transaction, input dto.UpdateTransactionInput) error {
	if input.Description != nil {
		tx.Description = *input.Description
	}
	if input.PaymentType != nil {
		tx.PaymentType = *input.PaymentType
	}
	if input.Category != nil {
		tx.Category = *input.Category
	}
	if input.Amount != nil {
		tx.Amount = *input.Amount
	}
	if input.Location != nil {
		tx.Location = strings.TrimSpace(*input.Location)
		if tx.Location == "" {
			tx.Location = models.DefaultLocation
		}
	}
	if input.Date != nil {
		date, err := models.ParseDate(*input.Date)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTransactionInput, err)
		}
		tx.Date = date
	}
	return nil
}

// fieldCauses ties rejected input fields to the model error they stand for,
// most specific first.
var fieldCauses = []struct {
	field string
	cause error
}{
	{"category", models.ErrInvalidCategory},
	{"amount", models.ErrInvalidAmount},
	{"date", models.ErrInvalidDate},
	{"paymentType", models.ErrInvalidPaymentType},
}

func invalidInput(err error) error {
	fields := validation.FormatErrors(err)
	for _, fc := range fieldCauses {
		if _, ok := fields[fc.field]; ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidTransactionInput, fc.cause, describeFields(fields))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransactionInput, describeFields(fields))
}

func describeFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for field, msg := range fields {
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

