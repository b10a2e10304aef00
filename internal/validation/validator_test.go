package validation

import (
	"testing"

	"finance-tracker/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidator_CreateTransactionInput(t *testing.T) {
	v := NewValidator()

	valid := dto.CreateTransactionInput{
		Description: "Rent",
		PaymentType: "card",
		Category:    "expense",
		Amount:      1200,
		Date:        "2024-04-01",
	}
	assert.NoError(t, v.Struct(valid))

	tests := []struct {
		name  string
		field string
		edit  func(*dto.CreateTransactionInput)
	}{
		{"unknown category", "category", func(in *dto.CreateTransactionInput) { in.Category = "income" }},
		{"unknown payment type", "paymentType", func(in *dto.CreateTransactionInput) { in.PaymentType = "cheque" }},
		{"negative amount", "amount", func(in *dto.CreateTransactionInput) { in.Amount = -3 }},
		{"overflowing amount", "amount", func(in *dto.CreateTransactionInput) { in.Amount = 1e308 }},
		{"bad date", "date", func(in *dto.CreateTransactionInput) { in.Date = "04/01/2024" }},
		{"missing description", "description", func(in *dto.CreateTransactionInput) { in.Description = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)

			err := v.Struct(in)
			require.Error(t, err)
			assert.Contains(t, FormatErrors(err), tt.field)
		})
	}
}

func TestValidator_UpdateTransactionInput(t *testing.T) {
	v := NewValidator()

	ok := dto.UpdateTransactionInput{TransactionID: "3f1f7c1e-2a43-4b55-9d55-8e4a3c2e1b10"}
	assert.NoError(t, v.Struct(ok))

	withCategory := ok
	withCategory.Category = strPtr("saving")
	assert.NoError(t, v.Struct(withCategory))

	badCategory := ok
	badCategory.Category = strPtr("lottery")
	err := v.Struct(badCategory)
	require.Error(t, err)
	assert.Equal(t, "must be one of expense, saving, investment", FormatErrors(err)["category"])

	hugeAmount := ok
	amount := 1e308
	hugeAmount.Amount = &amount
	err = v.Struct(hugeAmount)
	require.Error(t, err)
	assert.Equal(t, "must be less than or equal to 1000000000000", FormatErrors(err)["amount"])

	badID := dto.UpdateTransactionInput{TransactionID: "not-a-uuid"}
	err = v.Struct(badID)
	require.Error(t, err)
	assert.Equal(t, "must be a valid UUID", FormatErrors(err)["transactionId"])
}

func TestValidator_SignUpInput(t *testing.T) {
	v := GetValidator()

	in := dto.SignUpInput{Username: "sam", Name: "Sam", Password: "secret1", Gender: "female"}
	assert.NoError(t, v.Struct(in))

	in.Gender = "robot"
	err := v.Struct(in)
	require.Error(t, err)
	assert.Equal(t, "must be one of male, female", FormatErrors(err)["gender"])
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
