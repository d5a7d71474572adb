package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sign mints an HS256 token carrying the given claims. Only the mock backend
// and tests use it; the client never signs production credentials.
func Sign(claims Claims, key []byte) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key required")
	}

	wire := wireClaims{
		Email:       claims.Email,
		Role:        claims.Role,
		TenantID:    claims.TenantID,
		TenantName:  claims.TenantName,
		TenantTier:  claims.TenantTier,
		Permissions: claims.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.Subject,
		},
	}
	if !claims.IssuedAt.IsZero() {
		wire.IssuedAt = jwt.NewNumericDate(claims.IssuedAt)
	}
	if !claims.ExpiresAt.IsZero() {
		wire.ExpiresAt = jwt.NewNumericDate(claims.ExpiresAt)
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(key)
}

// SignExpiring mints a token for the subject that expires after ttl,
// measured from now. Negative ttl produces an already-expired token, which
// tests use to exercise the startup expiry path.
func SignExpiring(subject string, ttl time.Duration, now time.Time, key []byte) (string, error) {
	return Sign(Claims{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, key)
}
