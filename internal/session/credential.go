package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrSessionExpired indicates the credential's embedded expiry has passed. It is
// distinct from a backend authentication rejection: the portal detects it locally,
// before a call is attempted, and forces a logout instead of letting the backend
// bounce the request.
var ErrSessionExpired = errors.New("session expired")

// CheckExpiry evaluates the credential's exp claim against now. The portal never
// holds the backend's signing key, so the token is decoded without signature
// verification; only the expiry is judged locally, everything else stays the
// backend's problem. A token that cannot be decoded at all is reported as expired:
// it will never authenticate a call.
func CheckExpiry(token string, now time.Time) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fmt.Errorf("%w: undecodable credential: %v", ErrSessionExpired, err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return ErrSessionExpired
	}
	return nil
}
