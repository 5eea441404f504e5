package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

// AccessClaims are the claims carried by a local access token.
type AccessClaims struct {
	UserID    string
	Role      string
	SessionID string
	ExpiresAt time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

// TTL is the lifetime of issued access tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

func (m *TokenManager) GenerateToken(userID, role, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"sid":     sessionID,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, expiresAt)
	_, tokenString, err := m.auth.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt.UTC().Truncate(time.Second), nil
}

// VerifyToken checks signature and expiry and returns the typed claims.
func (m *TokenManager) VerifyToken(tokenString string) (*AccessClaims, error) {
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		return nil, err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, err
	}

	userID, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil {
		return nil, err
	}
	sid, err := GetSessionIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &AccessClaims{UserID: userID, Role: role, SessionID: sid, ExpiresAt: token.Expiration()}, nil
}

// Helper functions to extract claims
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

func GetSessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("sid claim is missing or not a string")
	}
	return sid, nil
}
