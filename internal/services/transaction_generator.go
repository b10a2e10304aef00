package services

import (
	"sort"
	"time"

	"finance-tracker/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transactionGenerator struct {
	faker *gofakeit.Faker
}

// Category mix of generated history: mostly expenses with some saving and investing
const (
	expenseWeight    = 0.70
	savingWeight     = 0.20
	cardPaymentRatio = 0.65
)

// NewTransactionGenerator creates a generator. A zero seed picks a random one.
func NewTransactionGenerator(seed uint64) TransactionGeneratorInterface {
	return &transactionGenerator{
		faker: gofakeit.New(seed),
	}
}

// GenerateTransactions builds count transactions for the user dated within
// [start, end], newest first
func (g *transactionGenerator) GenerateTransactions(userID uuid.UUID, count int, start, end time.Time) []models.Transaction {
	if count <= 0 {
		return []models.Transaction{}
	}
	if end.Before(start) {
		start, end = end, start
	}

	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		category := g.GenerateCategory()
		transactions = append(transactions, models.Transaction{
			UserID:      userID,
			Description: g.GenerateDescription(category),
			PaymentType: g.GeneratePaymentType(),
			Category:    category,
			Amount:      g.GenerateAmount(category),
			Location:    g.faker.City(),
			Date:        g.GenerateDate(start, end),
		})
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})

	return transactions
}

// GenerateCategory picks a category with weighted distribution
func (g *transactionGenerator) GenerateCategory() string {
	roll := g.faker.Float64Range(0, 1)

	if roll < expenseWeight {
		return models.CategoryExpense
	}
	if roll < expenseWeight+savingWeight {
		return models.CategorySaving
	}
	return models.CategoryInvestment
}

func (g *transactionGenerator) GeneratePaymentType() string {
	if g.faker.Float64Range(0, 1) < cardPaymentRatio {
		return models.PaymentTypeCard
	}
	return models.PaymentTypeCash
}

func (g *transactionGenerator) GenerateDescription(category string) string {
	descriptions, ok := models.SampleTransactionDescriptions[category]
	if !ok || len(descriptions) == 0 {
		return g.faker.Company()
	}
	return g.faker.RandomString(descriptions)
}

// GenerateAmount generates a realistic amount based on category, rounded to cents
func (g *transactionGenerator) GenerateAmount(category string) float64 {
	minValue, maxValue := getAmountRange(category)
	amount := decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(2)
	return amount.InexactFloat64()
}

func getAmountRange(category string) (float64, float64) {
	ranges := map[string][2]float64{
		models.CategoryExpense:    {5.00, 400.00},
		models.CategorySaving:     {50.00, 1000.00},
		models.CategoryInvestment: {100.00, 2500.00},
	}

	if r, exists := ranges[category]; exists {
		return r[0], r[1]
	}
	return 10.00, 100.00
}

// GenerateDate returns a calendar date (UTC midnight) within the range
func (g *transactionGenerator) GenerateDate(start, end time.Time) time.Time {
	ts := start
	if end.After(start) {
		ts = g.faker.DateRange(start, end)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
