package services

import (
	"errors"
	"fmt"

	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/google/uuid"
)

// ErrStatisticOverflow is returned when a category total does not fit in a float64.
var ErrStatisticOverflow = errors.New("category total overflowed")

type statisticsService struct {
	transactionRepo repositories.TransactionRepositoryInterface
}

// NewStatisticsService creates a new StatisticsServiceInterface instance
func NewStatisticsService(transactionRepo repositories.TransactionRepositoryInterface) StatisticsServiceInterface {
	return &statisticsService{transactionRepo: transactionRepo}
}

// GetCategoryStatistics loads the user's transactions and sums them per category
func (s *statisticsService) GetCategoryStatistics(userID uuid.UUID) ([]models.CategoryStatistic, error) {
	transactions, err := s.transactionRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for statistics: %w", err)
	}

	stats := AggregateByCategory(transactions)
	for _, stat := range stats {
		if !isFinite(stat.TotalAmount) {
			return nil, fmt.Errorf("%w: %s", ErrStatisticOverflow, stat.Category)
		}
	}
	return stats, nil
}

// AggregateByCategory returns one entry per category present in transactions,
// holding the sum of their amounts. Entries follow the order in which each
// category first appears. Amounts are summed as-is, without validation.
func AggregateByCategory(transactions []models.Transaction) []models.CategoryStatistic {
	stats := make([]models.CategoryStatistic, 0, len(models.Categories))
	index := make(map[string]int, len(models.Categories))

	for _, tx := range transactions {
		i, ok := index[tx.Category]
		if !ok {
			i = len(stats)
			index[tx.Category] = i
			stats = append(stats, models.CategoryStatistic{Category: tx.Category})
		}
		stats[i].TotalAmount += tx.Amount
	}

	return stats
}
