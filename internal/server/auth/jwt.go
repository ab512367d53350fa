// Package auth mints and verifies the HS256 access tokens handed out after a
// confirmed signup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// Claims carries the identity reference in addition to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	UserName  string `json:"username"`
	TokenType string `json:"token_type"`
}

// Credential is an issued access token.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer signs and parses access tokens with a process-wide secret.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	clock    timex.Clock
}

// NewIssuer fails with common.ErrConfiguration when the secret is missing
// or the lifetime is not positive.
func NewIssuer(secret string, lifetime time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrConfiguration)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: non-positive token lifetime %s", common.ErrConfiguration, lifetime)
	}
	return &Issuer{secret: []byte(secret), lifetime: lifetime}, nil
}

// WithClock returns a copy of the issuer that reads time from c.
func (i *Issuer) WithClock(c timex.Clock) *Issuer {
	cp := *i
	cp.clock = c
	return &cp
}

// Lifetime is the validity window of issued tokens.
func (i *Issuer) Lifetime() time.Duration { return i.lifetime }

// Issue mints a token for u that expires one lifetime from now.
func (i *Issuer) Issue(u *models.User) (*Credential, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		UserID:    u.ID,
		UserName:  u.UserName,
		TokenType: accessTokenType,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, err
	}
	return &Credential{Token: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies signature, algorithm, token type and expiry. Expired tokens
// yield common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != accessTokenType || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
