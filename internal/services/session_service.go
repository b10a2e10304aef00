package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/models"
	"finance-tracker/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token is expired")
	ErrInvalidIssuer = errors.New("invalid issuer")
	ErrEmptyToken    = errors.New("empty token")
	ErrRevokedToken  = errors.New("token has been revoked")
)

// SessionService signs session tokens carried by the session cookie and
// tracks revoked ones in the blacklist.
type SessionService struct {
	config.SessionConfig
	blacklist repositories.BlacklistedTokenRepositoryInterface
	audit     AuditLoggerInterface
}

// NewSessionService creates a session service from the session configuration
func NewSessionService(
	sessionConfig *config.SessionConfig,
	blacklist repositories.BlacklistedTokenRepositoryInterface,
	audit AuditLoggerInterface,
) SessionServiceInterface {
	return &SessionService{
		SessionConfig: *sessionConfig,
		blacklist:     blacklist,
		audit:         audit,
	}
}

// Issue signs a new session token for the user
func (ss *SessionService) Issue(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("user cannot be nil")
	}

	now := time.Now()
	expiresAt := now.Add(ss.MaxAge)

	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ss.Issuer,
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID:   user.ID.String(),
		Username: user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenString, err := token.SignedString(ss.PrivateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses the token and rejects it when expired, foreign or revoked
func (ss *SessionService) Validate(tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, ss.keyFunc)
	if err != nil {
		return nil, mapTokenError(err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != ss.Issuer {
		return nil, ErrInvalidIssuer
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ID != "" {
		_, err := ss.blacklist.GetByJTI(claims.ID)
		if err == nil {
			return nil, ErrRevokedToken
		}
		if !errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, fmt.Errorf("failed to check token blacklist: %w", err)
		}
	}

	return claims, nil
}

// Revoke blacklists the session token of the principal until it expires
func (ss *SessionService) Revoke(ctx context.Context, principal auth.Authenticated) error {
	if principal.TokenID == "" {
		return nil
	}

	expiresAt := time.Now().Add(ss.MaxAge)
	if claims, err := extractUnverifiedClaims(principal.Token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	entry := &models.BlacklistedToken{
		JTI:       principal.TokenID,
		UserID:    principal.UserID,
		ExpiresAt: expiresAt,
	}
	if err := ss.blacklist.Create(entry); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if ss.audit != nil {
		ss.audit.LogAuthEvent(ctx, authEventLogout, principal.UserID, principal.Username, true, "")
	}
	return nil
}

func (ss *SessionService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return ss.PublicKey, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

func extractUnverifiedClaims(tokenString string) (*models.SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &models.SessionClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
