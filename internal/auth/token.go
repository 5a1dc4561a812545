package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expired, malformed, or missing the subject claim.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated subject inside a signed token.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies stateless HS256 tokens. A token stays
// valid until its absolute expiry; there is no server-side revocation.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenManager returns a TokenManager signing with key and issuing
// tokens valid for ttl.
func NewTokenManager(key string, ttl time.Duration) *TokenManager {
	return &TokenManager{signingKey: []byte(key), ttl: ttl}
}

// TTL reports the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token for the given user ID with an absolute expiry
// of now + TTL.
func (m *TokenManager) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Verify checks signature and expiry and returns the subject user ID.
func (m *TokenManager) Verify(tokenString string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
