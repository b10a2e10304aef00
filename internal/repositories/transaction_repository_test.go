package repositories

import (
	"testing"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestTransactionRepository(t *testing.T) {
	suite.Run(t, new(TransactionRepositorySuite))
}

type TransactionRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo TransactionRepositoryInterface
	user *models.User
}

func (s *TransactionRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewTransactionRepository(s.db.DB)
	s.user = database.CreateTestUser(s.T(), s.db, "owner")
}

func (s *TransactionRepositorySuite) newTransaction(category string, amount float64, date time.Time) *models.Transaction {
	return &models.Transaction{
		UserID:      s.user.ID,
		Description: "Coffee",
		PaymentType: models.PaymentTypeCash,
		Category:    category,
		Amount:      amount,
		Date:        date,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *TransactionRepositorySuite) TestCreate() {
	tx := s.newTransaction(models.CategoryExpense, 3.5, day(2024, 5, 1))

	err := s.repo.Create(tx)
	s.NoError(err)
	s.NotEqual(uuid.Nil, tx.ID)
	s.Equal(models.DefaultLocation, tx.Location)

	found, err := s.repo.GetByID(tx.ID)
	s.Require().NoError(err)
	s.Equal("Coffee", found.Description)
	s.Equal("2024-05-01", found.FormattedDate())
	s.Equal(models.DefaultLocation, found.Location)
}

func (s *TransactionRepositorySuite) TestCreate_RejectsCategoryOutsideEnumeration() {
	tx := s.newTransaction("income", 10, day(2024, 5, 1))

	err := s.repo.Create(tx)
	s.ErrorIs(err, models.ErrInvalidCategory)

	list, err := s.repo.GetByUserID(s.user.ID)
	s.NoError(err)
	s.Empty(list)
}

func (s *TransactionRepositorySuite) TestCreate_RejectsNegativeAmount() {
	tx := s.newTransaction(models.CategoryExpense, -5, day(2024, 5, 1))

	err := s.repo.Create(tx)
	s.ErrorIs(err, models.ErrInvalidAmount)
}

func (s *TransactionRepositorySuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(uuid.New())
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionRepositorySuite) TestGetByUserID_OrderedByDateDescending() {
	s.Require().NoError(s.repo.Create(s.newTransaction(models.CategoryExpense, 1, day(2024, 1, 10))))
	s.Require().NoError(s.repo.Create(s.newTransaction(models.CategorySaving, 2, day(2024, 3, 5))))
	s.Require().NoError(s.repo.Create(s.newTransaction(models.CategoryInvestment, 3, day(2023, 12, 31))))

	other := database.CreateTestUser(s.T(), s.db, "someone")
	database.CreateTestTransaction(s.T(), s.db, other.ID, models.CategoryExpense, 99, day(2024, 6, 1))

	list, err := s.repo.GetByUserID(s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("2024-03-05", list[0].FormattedDate())
	s.Equal("2024-01-10", list[1].FormattedDate())
	s.Equal("2023-12-31", list[2].FormattedDate())
}

func (s *TransactionRepositorySuite) TestGetByUserID_EmptyIsNotNil() {
	list, err := s.repo.GetByUserID(uuid.New())
	s.NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *TransactionRepositorySuite) TestUpdate() {
	tx := s.newTransaction(models.CategoryExpense, 10, day(2024, 2, 1))
	s.Require().NoError(s.repo.Create(tx))

	tx.Amount = 0
	tx.Category = models.CategorySaving
	tx.Location = "Bank"
	err := s.repo.Update(tx)
	s.NoError(err)

	found, err := s.repo.GetByID(tx.ID)
	s.Require().NoError(err)
	s.Equal(0.0, found.Amount)
	s.Equal(models.CategorySaving, found.Category)
	s.Equal("Bank", found.Location)
	s.Equal(s.user.ID, found.UserID)
}

func (s *TransactionRepositorySuite) TestUpdate_RejectsInvalidCategory() {
	tx := s.newTransaction(models.CategoryExpense, 10, day(2024, 2, 1))
	s.Require().NoError(s.repo.Create(tx))

	tx.Category = "gambling"
	err := s.repo.Update(tx)
	s.ErrorIs(err, models.ErrInvalidCategory)

	found, err := s.repo.GetByID(tx.ID)
	s.Require().NoError(err)
	s.Equal(models.CategoryExpense, found.Category)
}

func (s *TransactionRepositorySuite) TestUpdate_NotFound() {
	tx := s.newTransaction(models.CategoryExpense, 10, day(2024, 2, 1))
	tx.ID = uuid.New()

	err := s.repo.Update(tx)
	s.Equal(ErrTransactionNotFound, err)
}

func (s *TransactionRepositorySuite) TestDelete() {
	tx := s.newTransaction(models.CategoryInvestment, 100, day(2024, 2, 1))
	s.Require().NoError(s.repo.Create(tx))

	s.NoError(s.repo.Delete(tx.ID))

	_, err := s.repo.GetByID(tx.ID)
	s.Equal(ErrTransactionNotFound, err)

	s.Equal(ErrTransactionNotFound, s.repo.Delete(tx.ID))
}

func (s *TransactionRepositorySuite) TestCreateBatch() {
	batch := []models.Transaction{
		*s.newTransaction(models.CategoryExpense, 1, day(2024, 1, 1)),
		*s.newTransaction(models.CategorySaving, 2, day(2024, 1, 2)),
	}

	s.NoError(s.repo.CreateBatch(batch))
	s.NoError(s.repo.CreateBatch(nil))

	list, err := s.repo.GetByUserID(s.user.ID)
	s.NoError(err)
	s.Len(list, 2)
}

func (s *TransactionRepositorySuite) TestGetByUserID_ClosedDatabase() {
	sqlDB, err := s.db.DB.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	_, err = s.repo.GetByUserID(s.user.ID)
	s.ErrorIs(err, ErrStorage)

	err = s.repo.Create(s.newTransaction(models.CategoryExpense, 1, day(2024, 5, 1)))
	s.ErrorIs(err, ErrStorage)
}
