package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by the signed session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
