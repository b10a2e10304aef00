package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/repositories/repository_mocks"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *repository_mocks.MockTransactionRepositoryInterface
	audit   *service_mocks.MockAuditLoggerInterface
	service TransactionServiceInterface
	owner   auth.Authenticated
	other   auth.Authenticated
	ctx     context.Context
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.audit = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.service = NewTransactionService(s.repo, s.audit, nil, TransactionServiceConfig{})
	s.owner = auth.Authenticated{UserID: uuid.New(), Username: "owner"}
	s.other = auth.Authenticated{UserID: uuid.New(), Username: "other"}
	s.ctx = context.Background()
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) enforcing() TransactionServiceInterface {
	return NewTransactionService(s.repo, s.audit, nil, TransactionServiceConfig{EnforceOwnership: true})
}

func (s *TransactionServiceTestSuite) stored() *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		UserID:      s.owner.UserID,
		Description: "Groceries",
		PaymentType: models.PaymentTypeCard,
		Category:    models.CategoryExpense,
		Amount:      42,
		Location:    "Berlin",
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func (s *TransactionServiceTestSuite) TestCreate_Success() {
	input := dto.CreateTransactionInput{
		Description: "Rent",
		PaymentType: models.PaymentTypeCash,
		Category:    models.CategoryExpense,
		Amount:      900,
		Date:        "2024-05-01",
	}

	s.repo.EXPECT().Create(gomock.Any()).DoAndReturn(func(t *models.Transaction) error {
		t.ID = uuid.New()
		return nil
	})
	s.audit.EXPECT().LogTransactionCreated(gomock.Any(), s.owner.UserID, gomock.Any(), models.CategoryExpense, 900.0)

	created, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.NoError(err)
	s.Equal(s.owner.UserID, created.UserID)
	s.Equal(models.DefaultLocation, created.Location)
	s.Equal("2024-05-01", created.FormattedDate())
}

func (s *TransactionServiceTestSuite) TestCreate_InvalidCategory() {
	input := dto.CreateTransactionInput{
		Description: "Lottery",
		PaymentType: models.PaymentTypeCash,
		Category:    "gambling",
		Amount:      5,
		Date:        "2024-05-01",
	}

	created, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.ErrorIs(err, ErrInvalidTransactionInput)
	s.ErrorIs(err, models.ErrInvalidCategory)
	s.Contains(err.Error(), "category")
	s.Nil(created)
}

func (s *TransactionServiceTestSuite) TestCreate_NegativeAmount() {
	input := dto.CreateTransactionInput{
		Description: "Refund",
		PaymentType: models.PaymentTypeCard,
		Category:    models.CategoryExpense,
		Amount:      -10,
		Date:        "2024-05-01",
	}

	_, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.ErrorIs(err, ErrInvalidTransactionInput)
	s.ErrorIs(err, models.ErrInvalidAmount)
	s.Contains(err.Error(), "amount")
}

func (s *TransactionServiceTestSuite) TestCreate_AmountAboveLimit() {
	input := dto.CreateTransactionInput{
		Description: "Yacht",
		PaymentType: models.PaymentTypeCard,
		Category:    models.CategoryExpense,
		Amount:      1e308,
		Date:        "2024-05-01",
	}

	_, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.ErrorIs(err, models.ErrInvalidAmount)
}

func (s *TransactionServiceTestSuite) TestCreate_InvalidDate() {
	input := dto.CreateTransactionInput{
		Description: "Rent",
		PaymentType: models.PaymentTypeCash,
		Category:    models.CategoryExpense,
		Amount:      900,
		Date:        "01/05/2024",
	}

	_, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.ErrorIs(err, ErrInvalidTransactionInput)
	s.ErrorIs(err, models.ErrInvalidDate)
}

func (s *TransactionServiceTestSuite) TestCreate_RepositoryError() {
	input := dto.CreateTransactionInput{
		Description: "Rent",
		PaymentType: models.PaymentTypeCash,
		Category:    models.CategoryExpense,
		Amount:      900,
		Date:        "2024-05-01",
	}
	s.repo.EXPECT().Create(gomock.Any()).Return(errors.New("db down"))

	_, err := s.service.Create(s.ctx, s.owner.UserID, input)

	s.Error(err)
}

func (s *TransactionServiceTestSuite) TestListForUser() {
	txs := []models.Transaction{*s.stored()}
	s.repo.EXPECT().GetByUserID(s.owner.UserID).Return(txs, nil)

	result, err := s.service.ListForUser(s.owner.UserID)

	s.NoError(err)
	s.Equal(txs, result)
}

func (s *TransactionServiceTestSuite) TestGet_Owner() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)

	result, err := s.service.Get(s.ctx, s.owner, stored.ID)

	s.NoError(err)
	s.Equal(stored, result)
}

func (s *TransactionServiceTestSuite) TestGet_NonOwnerAllowedButAudited() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.audit.EXPECT().LogForeignTransactionAccess(gomock.Any(), s.other.UserID, s.owner.UserID, stored.ID, "get", false)

	result, err := s.service.Get(s.ctx, s.other, stored.ID)

	s.NoError(err)
	s.Equal(stored, result)
}

func (s *TransactionServiceTestSuite) TestGet_AnonymousAllowedButAudited() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.audit.EXPECT().LogForeignTransactionAccess(gomock.Any(), uuid.Nil, s.owner.UserID, stored.ID, "get", false)

	_, err := s.service.Get(s.ctx, auth.Anonymous{}, stored.ID)

	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestGet_NonOwnerForbiddenWhenEnforced() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.audit.EXPECT().LogForeignTransactionAccess(gomock.Any(), s.other.UserID, s.owner.UserID, stored.ID, "get", true)

	result, err := s.enforcing().Get(s.ctx, s.other, stored.ID)

	s.ErrorIs(err, ErrTransactionForbidden)
	s.Nil(result)
}

func (s *TransactionServiceTestSuite) TestGet_NotFound() {
	id := uuid.New()
	s.repo.EXPECT().GetByID(id).Return(nil, repositories.ErrTransactionNotFound)

	_, err := s.service.Get(s.ctx, s.owner, id)

	s.ErrorIs(err, repositories.ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestUpdate_PartialFields() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.repo.EXPECT().Update(gomock.Any()).Return(nil)
	s.audit.EXPECT().LogTransactionUpdated(gomock.Any(), s.owner.UserID, stored.ID)

	updated, err := s.service.Update(s.ctx, s.owner, dto.UpdateTransactionInput{
		TransactionID: stored.ID.String(),
		Amount:        ptr(55.5),
		Category:      ptr(models.CategorySaving),
		Date:          ptr("2024-06-10"),
	})

	s.NoError(err)
	s.Equal(55.5, updated.Amount)
	s.Equal(models.CategorySaving, updated.Category)
	s.Equal("2024-06-10", updated.FormattedDate())
	s.Equal("Groceries", updated.Description)
	s.Equal("Berlin", updated.Location)
}

func (s *TransactionServiceTestSuite) TestUpdate_BlankLocationResetsDefault() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.repo.EXPECT().Update(gomock.Any()).Return(nil)
	s.audit.EXPECT().LogTransactionUpdated(gomock.Any(), s.owner.UserID, stored.ID)

	updated, err := s.service.Update(s.ctx, s.owner, dto.UpdateTransactionInput{
		TransactionID: stored.ID.String(),
		Location:      ptr("   "),
	})

	s.NoError(err)
	s.Equal(models.DefaultLocation, updated.Location)
}

func (s *TransactionServiceTestSuite) TestUpdate_InvalidID() {
	_, err := s.service.Update(s.ctx, s.owner, dto.UpdateTransactionInput{TransactionID: "nope"})
	s.ErrorIs(err, ErrInvalidTransactionInput)
}

func (s *TransactionServiceTestSuite) TestUpdate_InvalidCategory() {
	_, err := s.service.Update(s.ctx, s.owner, dto.UpdateTransactionInput{
		TransactionID: uuid.New().String(),
		Category:      ptr("gambling"),
	})
	s.ErrorIs(err, ErrInvalidTransactionInput)
}

func (s *TransactionServiceTestSuite) TestUpdate_NonOwnerForbiddenWhenEnforced() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.repo.EXPECT().Update(gomock.Any()).Times(0)
	s.audit.EXPECT().LogForeignTransactionAccess(gomock.Any(), s.other.UserID, s.owner.UserID, stored.ID, "update", true)

	_, err := s.enforcing().Update(s.ctx, s.other, dto.UpdateTransactionInput{
		TransactionID: stored.ID.String(),
		Amount:        ptr(1.0),
	})

	s.ErrorIs(err, ErrTransactionForbidden)
}

func (s *TransactionServiceTestSuite) TestDelete_ReturnsDeletedTransaction() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.repo.EXPECT().Delete(stored.ID).Return(nil)
	s.audit.EXPECT().LogTransactionDeleted(gomock.Any(), s.owner.UserID, stored.ID)

	deleted, err := s.service.Delete(s.ctx, s.owner, stored.ID)

	s.NoError(err)
	s.Equal(stored, deleted)
}

func (s *TransactionServiceTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	s.repo.EXPECT().GetByID(id).Return(nil, repositories.ErrTransactionNotFound)

	_, err := s.service.Delete(s.ctx, s.owner, id)

	s.ErrorIs(err, repositories.ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestDelete_NonOwnerForbiddenWhenEnforced() {
	stored := s.stored()
	s.repo.EXPECT().GetByID(stored.ID).Return(stored, nil)
	s.repo.EXPECT().Delete(gomock.Any()).Times(0)
	s.audit.EXPECT().LogForeignTransactionAccess(gomock.Any(), s.other.UserID, s.owner.UserID, stored.ID, "delete", true)

	_, err := s.enforcing().Delete(s.ctx, s.other, stored.ID)

	s.ErrorIs(err, ErrTransactionForbidden)
}
