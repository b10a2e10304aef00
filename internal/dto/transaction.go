package dto

// CreateTransactionInput is the payload of the createTransaction mutation
type CreateTransactionInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	PaymentType string  `json:"paymentType" validate:"required,payment_type"`
	Category    string  `json:"category" validate:"required,transaction_category"`
	Amount      float64 `json:"amount" validate:"gte=0,lte=1000000000000"`
	Location    string  `json:"location" validate:"max=255"`
	Date        string  `json:"date" validate:"required,calendar_date"`
}

// UpdateTransactionInput is the payload of the updateTransaction mutation.
// Nil fields are left unchanged.
type UpdateTransactionInput struct {
	TransactionID string   `json:"transactionId" validate:"required,uuid"`
	Description   *string  `json:"description" validate:"omitempty,min=1,max=500"`
	PaymentType   *string  `json:"paymentType" validate:"omitempty,payment_type"`
	Category      *string  `json:"category" validate:"omitempty,transaction_category"`
	Amount        *float64 `json:"amount" validate:"omitempty,gte=0,lte=1000000000000"`
	Location      *string  `json:"location" validate:"omitempty,max=255"`
	Date          *string  `json:"date" validate:"omitempty,calendar_date"`
}
