package repositories

import (
	"errors"
	"fmt"

	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction. Model validation runs in the BeforeCreate hook.
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w: %w", ErrStorage, err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	transaction := &models.Transaction{ID: id}
	if err := r.db.First(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w: %w", ErrStorage, err)
	}
	return transaction, nil
}

// GetByUserID retrieves all transactions for a user ordered by date descending
func (r *transactionRepository) GetByUserID(userID uuid.UUID) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := r.db.Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w: %w", ErrStorage, err)
	}
	return transactions, nil
}

// Update writes every mutable column of the transaction. The BeforeUpdate hook
// re-validates category and payment type.
func (r *transactionRepository) Update(transaction *models.Transaction) error {
	result := r.db.Model(transaction).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(transaction)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w: %w", ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction by ID
func (r *transactionRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w: %w", ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// CreateBatch creates multiple transactions in one database transaction
func (r *transactionRepository) CreateBatch(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(transactions, 100).Error; err != nil {
			return fmt.Errorf("failed to create transactions batch: %w: %w", ErrStorage, err)
		}
		return nil
	})
}
