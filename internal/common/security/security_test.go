package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("secret"), time.Minute)
	token, expiresAt, err := tm.GenerateToken("user-1", "student", "session-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %s", expiresAt)
	}

	claims, err := tm.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "student" || claims.SessionID != "session-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyTokenRejectsExpiredAndForeign(t *testing.T) {
	expired := NewTokenManager([]byte("secret"), -time.Minute)
	token, _, err := expired.GenerateToken("user-1", "student", "session-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := NewTokenManager([]byte("secret"), time.Minute).VerifyToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	foreign, _, err := NewTokenManager([]byte("other"), time.Minute).GenerateToken("user-1", "admin", "session-1")
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := NewTokenManager([]byte("secret"), time.Minute).VerifyToken(foreign); err == nil {
		t.Fatal("expected token signed with another key to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !CheckPasswordHash("secret", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatalf("expected password mismatch")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	a, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("refresh token error: %v", err)
	}
	b, _ := NewRefreshToken()
	if a == b {
		t.Fatal("expected distinct refresh tokens")
	}
	if HashToken(a) != HashToken(a) || HashToken(a) == HashToken(b) {
		t.Fatal("expected stable, distinct hashes")
	}
}
