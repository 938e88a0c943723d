// Package token issues and validates the HS256 bearer tokens carrying the
// caller's ledger identity. Signature verification stands in for the host
// chain's transaction-signature check at this service's boundary.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coffer/internal/platform/middleware"
)

// Claims are the JWT claims coffer understands. The subject is the caller's
// host-ledger account id.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and validates tokens with a shared HS256 key.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewManager builds a token manager. ttl bounds how long an issued token is
// accepted.
func NewManager(signingKey string, ttl time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     "coffer",
		ttl:        ttl,
	}
}

// Issue creates a signed token for a caller account.
func (m *Manager) Issue(callerID string, admin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   callerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
}

// ValidateToken implements middleware.JWTValidator.
func (m *Manager) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &middleware.JWTClaims{CallerID: claims.Subject, Admin: claims.Admin}, nil
}
