package graph

import (
	"context"
	"errors"
	"log/slog"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/dto"
	apperrors "finance-tracker/internal/errors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services"
)

// Resolver holds the services behind every GraphQL field.
type Resolver struct {
	transactions services.TransactionServiceInterface
	statistics   services.StatisticsServiceInterface
	advice       services.AdviceServiceInterface
	auth         services.AuthServiceInterface
	sessions     services.SessionServiceInterface
	logger       *slog.Logger
}

func NewResolver(
	transactions services.TransactionServiceInterface,
	statistics services.StatisticsServiceInterface,
	advice services.AdviceServiceInterface,
	authService services.AuthServiceInterface,
	sessions services.SessionServiceInterface,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		transactions: transactions,
		statistics:   statistics,
		advice:       advice,
		auth:         authService,
		sessions:     sessions,
		logger:       logger,
	}
}

// LogoutResponse is the payload of the logout mutation
type LogoutResponse struct {
	Message string `json:"message"`
}

func (r *Resolver) fail(ctx context.Context, msg string, err error, attrs ...any) error {
	args := append([]any{slog.String("error", err.Error())}, attrs...)
	r.logger.ErrorContext(ctx, msg, args...)
	return newError(msg, codeFor(err))
}

func requireUser(ctx context.Context) (auth.Authenticated, error) {
	p := auth.FromContext(ctx)
	if a, ok := p.(auth.Authenticated); ok {
		return a, nil
	}
	return auth.Authenticated{}, unauthorized(p)
}

// Transactions lists the caller's transactions
func (r *Resolver) Transactions(ctx context.Context) ([]models.Transaction, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := r.transactions.ListForUser(caller.UserID)
	if err != nil {
		return nil, r.fail(ctx, MsgGetTransactions, err, slog.String("user_id", caller.UserID.String()))
	}
	return txs, nil
}

// Transaction returns a transaction by id, or nil when it does not exist
func (r *Resolver) Transaction(ctx context.Context, rawID string) (*models.Transaction, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, r.fail(ctx, MsgGetTransaction, err, slog.String("transaction_id", rawID))
	}

	tx, err := r.transactions.Get(ctx, auth.FromContext(ctx), id)
	switch {
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return nil, nil
	case errors.Is(err, services.ErrTransactionForbidden):
		return nil, newError(MsgUnauthorized, apperrors.AuthForbidden)
	case err != nil:
		return nil, r.fail(ctx, MsgGetTransaction, err, slog.String("transaction_id", rawID))
	}
	return tx, nil
}

// CategoryStatistics returns the caller's per-category totals
func (r *Resolver) CategoryStatistics(ctx context.Context) ([]models.CategoryStatistic, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := r.statistics.GetCategoryStatistics(caller.UserID)
	if err != nil {
		return nil, r.fail(ctx, MsgGetCategoryStatistics, err, slog.String("user_id", caller.UserID.String()))
	}
	return stats, nil
}

func (r *Resolver) CreateTransaction(ctx context.Context, input dto.CreateTransactionInput) (*models.Transaction, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := r.transactions.Create(ctx, caller.UserID, input)
	if err != nil {
		return nil, r.fail(ctx, MsgCreateTransaction, err, slog.String("user_id", caller.UserID.String()))
	}
	return tx, nil
}

func (r *Resolver) UpdateTransaction(ctx context.Context, input dto.UpdateTransactionInput) (*models.Transaction, error) {
	tx, err := r.transactions.Update(ctx, auth.FromContext(ctx), input)
	if errors.Is(err, services.ErrTransactionForbidden) {
		return nil, newError(MsgUnauthorized, apperrors.AuthForbidden)
	}
	if err != nil {
		return nil, r.fail(ctx, MsgUpdateTransaction, err, slog.String("transaction_id", input.TransactionID))
	}
	return tx, nil
}

func (r *Resolver) DeleteTransaction(ctx context.Context, rawID string) (*models.Transaction, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, r.fail(ctx, MsgDeleteTransaction, err, slog.String("transaction_id", rawID))
	}

	tx, err := r.transactions.Delete(ctx, auth.FromContext(ctx), id)
	if errors.Is(err, services.ErrTransactionForbidden) {
		return nil, newError(MsgUnauthorized, apperrors.AuthForbidden)
	}
	if err != nil {
		return nil, r.fail(ctx, MsgDeleteTransaction, err, slog.String("transaction_id", rawID))
	}
	return tx, nil
}

// AIResponse returns advice for the caller. Generation failures are already
// folded into the fallback text.
func (r *Resolver) AIResponse(ctx context.Context) (string, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return "", err
	}
	return r.advice.GetAdvice(ctx, caller.UserID), nil
}

// TransactionUser resolves Transaction.user
func (r *Resolver) TransactionUser(ctx context.Context, tx *models.Transaction) (*models.User, error) {
	user, err := r.auth.GetUser(tx.UserID)
	if err != nil {
		return nil, r.fail(ctx, MsgGetUser, err, slog.String("user_id", tx.UserID.String()))
	}
	return user, nil
}

// UserTransactions resolves User.transactions
func (r *Resolver) UserTransactions(ctx context.Context, user *models.User) ([]models.Transaction, error) {
	txs, err := r.transactions.ListForUser(user.ID)
	if err != nil {
		return nil, r.fail(ctx, MsgInternal, err, slog.String("user_id", user.ID.String()))
	}
	return txs, nil
}

// AuthUser returns the caller, or nil for anonymous requests
func (r *Resolver) AuthUser(ctx context.Context) (*models.User, error) {
	caller, ok := auth.FromContext(ctx).(auth.Authenticated)
	if !ok {
		return nil, nil
	}

	user, err := r.auth.GetUser(caller.UserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, MsgInternal, err, slog.String("user_id", caller.UserID.String()))
	}
	return user, nil
}

func (r *Resolver) User(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, r.fail(ctx, MsgGetUser, err, slog.String("user_id", rawID))
	}

	user, err := r.auth.GetUser(id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, MsgGetUser, err, slog.String("user_id", rawID))
	}
	return user, nil
}

// SignUp creates the account and starts a session for it
func (r *Resolver) SignUp(ctx context.Context, input dto.SignUpInput) (*models.User, error) {
	user, err := r.auth.SignUp(ctx, input)
	switch {
	case errors.Is(err, services.ErrUserAlreadyExists):
		return nil, newError(MsgUsernameTaken, apperrors.ValidationGeneral)
	case errors.Is(err, services.ErrInvalidSignUpInput):
		return nil, newError(err.Error(), codeFor(err))
	case err != nil:
		return nil, r.fail(ctx, MsgInternal, err, slog.String("username", input.Username))
	}

	if err := r.startSession(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Resolver) Login(ctx context.Context, input dto.LoginInput) (*models.User, error) {
	user, err := r.auth.Login(ctx, input)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return nil, newError(MsgInvalidCredentials, apperrors.AuthUnauthorized)
	}
	if err != nil {
		return nil, r.fail(ctx, MsgInternal, err, slog.String("username", input.Username))
	}

	if err := r.startSession(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the caller's session and clears the cookie
func (r *Resolver) Logout(ctx context.Context) (*LogoutResponse, error) {
	caller, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.sessions.Revoke(ctx, caller); err != nil {
		return nil, r.fail(ctx, MsgInternal, err, slog.String("user_id", caller.UserID.String()))
	}

	sessionWriterFrom(ctx).ClearSession()
	return &LogoutResponse{Message: MsgLoggedOut}, nil
}

func (r *Resolver) startSession(ctx context.Context, user *models.User) error {
	token, expiresAt, err := r.sessions.Issue(user)
	if err != nil {
		return r.fail(ctx, MsgInternal, err, slog.String("user_id", user.ID.String()))
	}
	sessionWriterFrom(ctx).SetSession(token, expiresAt)
	return nil
}
