package repositories

import (
	"errors"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
)

// ErrStorage marks a failure of the database itself, as opposed to a missing
// or conflicting record.
var ErrStorage = errors.New("storage failure")

// TransactionRepositoryInterface defines the contract for transaction repository operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	// GetByUserID returns every transaction owned by the user, newest date first.
	GetByUserID(userID uuid.UUID) ([]models.Transaction, error)
	Update(transaction *models.Transaction) error
	Delete(id uuid.UUID) error
	CreateBatch(transactions []models.Transaction) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	GetByJTI(jti string) (*models.BlacklistedToken, error)
	DeleteExpired() (int64, error)
}
