package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is an exported constant or variable used by the session manager.
var ErrMalformed = errors.New("malformed token")

// ErrNoExpiry is an exported constant or variable used by the session manager.
var ErrNoExpiry = errors.New("token carries no expiry claim")

// Claims is the client-visible subset of the backend's bearer token payload.
type Claims struct {
	Subject     string
	Email       string
	Role        string
	TenantID    string
	TenantName  string
	TenantTier  string
	Permissions []string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type wireClaims struct {
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	TenantID    string   `json:"tid,omitempty"`
	TenantName  string   `json:"tname,omitempty"`
	TenantTier  string   `json:"ttier,omitempty"`
	Permissions []string `json:"perms,omitempty"`
	jwt.RegisteredClaims
}

// Decoder defines a public type used by dashauth APIs.
//
// Decoder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder describes the newdecoder operation and its observable behavior.
//
// NewDecoder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDecoder() *Decoder {
	return &Decoder{
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
}

// Decode parses the token payload WITHOUT verifying its signature and
// returns the embedded claims. Any structural problem maps to ErrMalformed;
// callers treat that exactly like an expired session.
func (d *Decoder) Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	var wire wireClaims
	if _, _, err := d.parser.ParseUnverified(raw, &wire); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}

	claims := &Claims{
		Subject:     wire.Subject,
		Email:       wire.Email,
		Role:        wire.Role,
		TenantID:    wire.TenantID,
		TenantName:  wire.TenantName,
		TenantTier:  wire.TenantTier,
		Permissions: wire.Permissions,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}

	return claims, nil
}

// ExpiresAt returns the token's embedded expiry. A token without an exp
// claim yields ErrNoExpiry so callers can treat it as already expired.
func (d *Decoder) ExpiresAt(raw string) (time.Time, error) {
	claims, err := d.Decode(raw)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt.IsZero() {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt, nil
}

// Remaining returns the token lifetime left at now. Malformed tokens and
// tokens without an expiry report zero remaining lifetime, never an error:
// both resolve to "refresh or log out" in the caller.
func (d *Decoder) Remaining(raw string, now time.Time) time.Duration {
	expiry, err := d.ExpiresAt(raw)
	if err != nil {
		return 0
	}

	remaining := expiry.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
