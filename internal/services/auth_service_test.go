package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/repositories/repository_mocks"
	"finance-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	userRepo        *repository_mocks.MockUserRepositoryInterface
	passwordService *service_mocks.MockPasswordServiceInterface
	audit           *service_mocks.MockAuditLoggerInterface
	authService     AuthServiceInterface
	ctx             context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.audit = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.authService = NewAuthService(s.userRepo, s.passwordService, s.audit, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) validSignUp() dto.SignUpInput {
	return dto.SignUpInput{
		Username: "jane_doe",
		Name:     "Jane Doe",
		Password: "secret123",
		Gender:   models.GenderFemale,
	}
}

func (s *AuthServiceTestSuite) TestSignUp_Success() {
	input := s.validSignUp()

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(nil, repositories.ErrUserNotFound).Times(1)
	s.passwordService.EXPECT().HashPassword(input.Password).Return("hashed_password", nil).Times(1)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(nil).Times(1)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventSignUp, gomock.Any(), input.Username, true, "").Times(1)

	user, err := s.authService.SignUp(s.ctx, input)

	s.NoError(err)
	s.Require().NotNil(user)
	s.Equal(input.Username, user.Username)
	s.Equal(input.Name, user.Name)
	s.Equal("hashed_password", user.PasswordHash)
	s.Equal("https://avatar.iran.liara.run/public/girl?username=jane_doe", user.ProfilePicture)
}

func (s *AuthServiceTestSuite) TestSignUp_MaleAvatar() {
	input := s.validSignUp()
	input.Gender = models.GenderMale

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(input.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(nil)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	user, err := s.authService.SignUp(s.ctx, input)

	s.NoError(err)
	s.Equal("https://avatar.iran.liara.run/public/boy?username=jane_doe", user.ProfilePicture)
}

func (s *AuthServiceTestSuite) TestSignUp_UserAlreadyExists() {
	input := s.validSignUp()
	existing := &models.User{ID: uuid.New(), Username: input.Username}

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(existing, nil).Times(1)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventSignUp, uuid.Nil, input.Username, false, "username_taken").Times(1)

	user, err := s.authService.SignUp(s.ctx, input)

	s.Equal(ErrUserAlreadyExists, err)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestSignUp_DuplicateOnCreate() {
	input := s.validSignUp()

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(input.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(gomock.Any()).Return(repositories.ErrUserAlreadyExists)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventSignUp, uuid.Nil, input.Username, false, "username_taken")

	user, err := s.authService.SignUp(s.ctx, input)

	s.Equal(ErrUserAlreadyExists, err)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestSignUp_InvalidInput() {
	input := s.validSignUp()
	input.Gender = "other"
	input.Password = "123"

	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventSignUp, uuid.Nil, input.Username, false, "invalid_input")

	user, err := s.authService.SignUp(s.ctx, input)

	s.ErrorIs(err, ErrInvalidSignUpInput)
	s.Contains(err.Error(), "gender")
	s.Contains(err.Error(), "password")
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestSignUp_HashFailure() {
	input := s.validSignUp()

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(input.Password).Return("", errors.New("password must be at least 6 characters"))

	user, err := s.authService.SignUp(s.ctx, input)

	s.Error(err)
	s.Contains(err.Error(), "failed to hash password")
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestSignUp_LookupFailure() {
	input := s.validSignUp()

	s.userRepo.EXPECT().GetByUsername(input.Username).Return(nil, errors.New("connection refused"))

	user, err := s.authService.SignUp(s.ctx, input)

	s.Error(err)
	s.Contains(err.Error(), "failed to check existing user")
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := &models.User{ID: uuid.New(), Username: "jane_doe", PasswordHash: "hashed_password"}

	s.userRepo.EXPECT().GetByUsername("jane_doe").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("secret123", "hashed_password").Return(true)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventLogin, user.ID, "jane_doe", true, "")

	result, err := s.authService.Login(s.ctx, dto.LoginInput{Username: "jane_doe", Password: "secret123"})

	s.NoError(err)
	s.Equal(user, result)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := &models.User{ID: uuid.New(), Username: "jane_doe", PasswordHash: "hashed_password"}

	s.userRepo.EXPECT().GetByUsername("jane_doe").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("wrong", "hashed_password").Return(false)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventLogin, user.ID, "jane_doe", false, "invalid_password")

	result, err := s.authService.Login(s.ctx, dto.LoginInput{Username: "jane_doe", Password: "wrong"})

	s.Equal(ErrInvalidCredentials, err)
	s.Nil(result)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUser() {
	s.userRepo.EXPECT().GetByUsername("ghost").Return(nil, repositories.ErrUserNotFound)
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventLogin, uuid.Nil, "ghost", false, "user_not_found")

	result, err := s.authService.Login(s.ctx, dto.LoginInput{Username: "ghost", Password: "secret123"})

	s.Equal(ErrInvalidCredentials, err)
	s.Nil(result)
}

func (s *AuthServiceTestSuite) TestLogin_MissingCredentials() {
	s.audit.EXPECT().LogAuthEvent(gomock.Any(), authEventLogin, uuid.Nil, "", false, "missing_credentials")

	result, err := s.authService.Login(s.ctx, dto.LoginInput{})

	s.Equal(ErrInvalidCredentials, err)
	s.Nil(result)
}

func (s *AuthServiceTestSuite) TestGetUser() {
	user := &models.User{ID: uuid.New(), Username: "jane_doe"}
	s.userRepo.EXPECT().GetByID(user.ID).Return(user, nil)

	result, err := s.authService.GetUser(user.ID)

	s.NoError(err)
	s.Equal(user, result)
}

func (s *AuthServiceTestSuite) TestGetUser_NotFound() {
	id := uuid.New()
	s.userRepo.EXPECT().GetByID(id).Return(nil, repositories.ErrUserNotFound)

	result, err := s.authService.GetUser(id)

	s.ErrorIs(err, repositories.ErrUserNotFound)
	s.Nil(result)
}
