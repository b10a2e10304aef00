package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finance-tracker/internal/dto"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidSignUpInput = errors.New("invalid sign-up input")
)

const (
	authEventSignUp = "sign_up"
	authEventLogin  = "login"
	authEventLogout = "logout"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        repositories.UserRepositoryInterface
	passwordService PasswordServiceInterface
	audit           AuditLoggerInterface
	metrics         MetricsRecorderInterface
	validator       *validation.Validator
	logger          *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	passwordService PasswordServiceInterface,
	audit AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:        userRepo,
		passwordService: passwordService,
		audit:           audit,
		metrics:         metrics,
		validator:       validation.GetValidator(),
		logger:          logger,
	}
}

// SignUp creates a new user with a generated profile picture
func (s *AuthService) SignUp(ctx context.Context, input dto.SignUpInput) (*models.User, error) {
	if err := s.validator.Struct(input); err != nil {
		s.auditAuth(ctx, authEventSignUp, uuid.Nil, input.Username, false, "invalid_input")
		return nil, fmt.Errorf("%w: %s", ErrInvalidSignUpInput, describeFields(validation.FormatErrors(err)))
	}

	existing, err := s.userRepo.GetByUsername(input.Username)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.auditAuth(ctx, authEventSignUp, uuid.Nil, input.Username, false, "username_taken")
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       input.Username,
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hashedPassword,
		Gender:         input.Gender,
		ProfilePicture: models.ProfilePictureURL(input.Username, input.Gender),
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			s.auditAuth(ctx, authEventSignUp, uuid.Nil, input.Username, false, "username_taken")
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditAuth(ctx, authEventSignUp, user.ID, user.Username, true, "")

	return user, nil
}

// Login verifies the credentials and returns the user
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*models.User, error) {
	if input.Username == "" || input.Password == "" {
		s.auditAuth(ctx, authEventLogin, uuid.Nil, input.Username, false, "missing_credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditAuth(ctx, authEventLogin, uuid.Nil, input.Username, false, "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwordService.ComparePassword(input.Password, user.PasswordHash) {
		s.auditAuth(ctx, authEventLogin, user.ID, input.Username, false, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	s.auditAuth(ctx, authEventLogin, user.ID, user.Username, true, "")

	return user, nil
}

// GetUser returns the user with the given id
func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *AuthService) auditAuth(ctx context.Context, event string, userID uuid.UUID, username string, success bool, reason string) {
	if s.audit != nil {
		s.audit.LogAuthEvent(ctx, event, userID, username, success, reason)
	}
	if s.metrics != nil {
		status := "success"
		if !success {
			status = "failed"
		}
		s.metrics.IncrementCounter(MetricAuthEvent, map[string]string{"event_type": event, "status": status})
	}
}
