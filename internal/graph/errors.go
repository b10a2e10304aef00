package graph

import (
	"errors"
	"fmt"

	"finance-tracker/internal/auth"
	apperrors "finance-tracker/internal/errors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services"

	"github.com/google/uuid"
)

// Messages surfaced to GraphQL clients. Causes are logged, never returned.
const (
	MsgUnauthorized          = "Unauthorized"
	MsgGetTransactions       = "Error getting transactions"
	MsgGetTransaction        = "Error getting transaction"
	MsgGetCategoryStatistics = "Error getting category statistics"
	MsgCreateTransaction     = "Error creating transaction"
	MsgUpdateTransaction     = "Error updating transaction"
	MsgDeleteTransaction     = "Error deleting transaction"
	MsgGetUser               = "Error getting user"
	MsgInternal              = "Internal server error"
	MsgUsernameTaken         = "Username already exists"
	MsgInvalidCredentials    = "Invalid username or password"
	MsgLoggedOut             = "Logged out successfully"
)

var errInvalidID = errors.New("invalid id")

// Error is returned to clients with its code under extensions.code.
type Error struct {
	Message string
	Code    apperrors.ErrorCode
}

func (e *Error) Error() string { return e.Message }

// Extensions is read by graphql-go when formatting the response.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

func newError(msg string, code apperrors.ErrorCode) error {
	return &Error{Message: msg, Code: code}
}

// codeFor classifies a service or repository error.
func codeFor(err error) apperrors.ErrorCode {
	switch {
	case errors.Is(err, services.ErrTransactionForbidden):
		return apperrors.AuthForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return apperrors.AuthUnauthorized
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.TransactionNotFound
	case errors.Is(err, models.ErrInvalidCategory):
		return apperrors.TransactionInvalidCategory
	case errors.Is(err, models.ErrInvalidAmount):
		return apperrors.TransactionInvalidAmount
	case errors.Is(err, models.ErrInvalidDate):
		return apperrors.ValidationInvalidDate
	case errors.Is(err, services.ErrInvalidTransactionInput), errors.Is(err, models.ErrInvalidPaymentType):
		return apperrors.TransactionValidationFailed
	case errors.Is(err, errInvalidID), errors.Is(err, services.ErrInvalidSignUpInput),
		errors.Is(err, services.ErrUserAlreadyExists):
		return apperrors.ValidationGeneral
	case errors.Is(err, repositories.ErrStorage):
		return apperrors.SystemDatabaseError
	default:
		return apperrors.SystemInternalError
	}
}

// unauthorized reports a missing session, distinguishing cookies that were
// presented but rejected.
func unauthorized(p auth.Principal) error {
	code := apperrors.AuthUnauthorized
	if anon, ok := p.(auth.Anonymous); ok && anon.Rejected != nil {
		code = apperrors.AuthInvalidSession
		if errors.Is(anon.Rejected, services.ErrExpiredToken) {
			code = apperrors.AuthExpiredSession
		}
	}
	return newError(MsgUnauthorized, code)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", errInvalidID, err)
	}
	return id, nil
}
