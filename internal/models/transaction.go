package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryExpense    = "expense"
	CategorySaving     = "saving"
	CategoryInvestment = "investment"

	PaymentTypeCash = "cash"
	PaymentTypeCard = "card"

	DefaultLocation = "Unknown"

	// MaxAmount bounds a single transaction so that per-user totals stay finite.
	MaxAmount = 1_000_000_000_000

	// DateLayout is the calendar-date rendering used on the wire and in prompts.
	DateLayout = "2006-01-02"
)

var (
	ErrInvalidCategory    = errors.New("invalid transaction category")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrInvalidAmount      = errors.New("transaction amount must be between 0 and 1000000000000")
	ErrInvalidDate        = errors.New("invalid date")
)

// Categories lists the closed set of transaction categories.
var Categories = []string{CategoryExpense, CategorySaving, CategoryInvestment}

// PaymentTypes lists the accepted payment types.
var PaymentTypes = []string{PaymentTypeCash, PaymentTypeCard}

// Transaction is a single financial record owned by one user.
type Transaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Description string    `gorm:"type:text;not null" json:"description"`
	PaymentType string    `gorm:"type:varchar(10);not null" json:"paymentType"`
	Category    string    `gorm:"type:varchar(20);not null" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Location    string    `gorm:"type:varchar(255);not null;default:'Unknown'" json:"location"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Location == "" {
		t.Location = DefaultLocation
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction. Category and payment type are checked on
// every write, not only on insert.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if t.Description == "" {
		return errors.New("transaction description is required")
	}

	if !IsValidCategory(t.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}

	if !IsValidPaymentType(t.PaymentType) {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentType, t.PaymentType)
	}

	if math.IsNaN(t.Amount) || t.Amount < 0 || t.Amount > MaxAmount {
		return ErrInvalidAmount
	}

	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}

	return nil
}

// FormattedDate renders the transaction date as YYYY-MM-DD.
func (t *Transaction) FormattedDate() string {
	return t.Date.Format(DateLayout)
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidCategory checks if the category belongs to the closed enumeration
func IsValidCategory(category string) bool {
	switch category {
	case CategoryExpense, CategorySaving, CategoryInvestment:
		return true
	default:
		return false
	}
}

// IsValidPaymentType checks if the payment type is valid
func IsValidPaymentType(paymentType string) bool {
	switch paymentType {
	case PaymentTypeCash, PaymentTypeCard:
		return true
	default:
		return false
	}
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp and
// truncates it to a UTC date.
func ParseDate(value string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, value); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Sample descriptions used when generating demo data
var SampleTransactionDescriptions = map[string][]string{
	CategoryExpense: {
		"Groceries",
		"Rent",
		"Electricity bill",
		"Internet",
		"Restaurant",
		"Gas station",
		"Gym membership",
		"Streaming subscription",
	},
	CategorySaving: {
		"Emergency fund",
		"Vacation fund",
		"Monthly savings transfer",
	},
	CategoryInvestment: {
		"Index fund purchase",
		"Retirement contribution",
		"Brokerage deposit",
	},
}
