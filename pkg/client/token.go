package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a signer is created without a secret
var ErrEmptySecret = errors.New("signing secret is empty")

// DefaultTokenTTL is the lifetime of a minted bearer token
const DefaultTokenTTL = 5 * time.Minute

// TokenSigner mints short-lived HS256 bearer tokens for backends that require them
type TokenSigner struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenSigner creates a signer. ttl <= 0 uses DefaultTokenTTL.
func NewTokenSigner(secret, subject string, ttl time.Duration) (*TokenSigner, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenSigner{secret: []byte(secret), subject: subject, ttl: ttl, now: time.Now}, nil
}

// Sign returns a fresh token
func (s *TokenSigner) Sign() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
