// Package auth issues and verifies member access tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest HS256 key accepted.
const MinSecretLength = 32

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWeakSecret   = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
)

// Claims carried by member access tokens. The subject is the member email.
type Claims struct {
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 access tokens.
type Provider struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewProvider builds a token provider.
func NewProvider(secret, issuer string, expiry time.Duration) (*Provider, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}
	return &Provider{secret: []byte(secret), issuer: issuer, expiry: expiry, now: time.Now}, nil
}

// CreateToken issues a token for the given email.
func (p *Provider) CreateToken(email string) (string, error) {
	now := p.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its subject.
func (p *Provider) ParseToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
