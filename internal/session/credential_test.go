package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func mintToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestCheckExpiryValidToken(t *testing.T) {
	now := time.Now()
	token := mintToken(t, jwt.RegisteredClaims{
		Subject:   "cust-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	if err := CheckExpiry(token, now); err != nil {
		t.Fatalf("unexpired token rejected: %v", err)
	}
}

func TestCheckExpiryExpiredToken(t *testing.T) {
	now := time.Now()
	token := mintToken(t, jwt.RegisteredClaims{
		Subject:   "cust-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	})
	if err := CheckExpiry(token, now); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestCheckExpiryAtBoundary(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token := mintToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)})
	// exp equal to now is already expired.
	if err := CheckExpiry(token, now); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired at exp boundary, got %v", err)
	}
}

func TestCheckExpiryNoExpClaim(t *testing.T) {
	token := mintToken(t, jwt.RegisteredClaims{Subject: "cust-1"})
	if err := CheckExpiry(token, time.Now()); err != nil {
		t.Fatalf("token without exp rejected: %v", err)
	}
}

func TestCheckExpiryUndecodableToken(t *testing.T) {
	if err := CheckExpiry("not-a-jwt", time.Now()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired for undecodable token, got %v", err)
	}
}
