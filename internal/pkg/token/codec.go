// Package token issues and validates the HS256-signed bearer credentials that
// identify a principal. Tokens are stateless: validity is decided by the
// signature and the embedded expiry alone, so rotating the secret invalidates
// every outstanding token.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bizdir/company-api/internal/core/ports"
)

var (
	ErrInvalidSignature = ports.ErrTokenInvalid
	ErrExpired          = ports.ErrTokenExpired
	ErrEmptySecret      = errors.New("token: signing secret is empty")
	ErrEmptyPrincipal   = errors.New("token: principal id is empty")
	ErrInvalidTTL       = errors.New("token: ttl must be positive")
)

// claims is the signed payload: the principal id plus the registered expiry.
type claims struct {
	PrincipalID string `json:"id"`
	jwt.RegisteredClaims
}

// Codec implements ports.TokenCodec.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a codec signing with secret.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.TokenCodec = (*Codec)(nil)

// Issue signs a token for principalID that expires ttl from now.
func (c *Codec) Issue(principalID string, ttl time.Duration) (string, error) {
	if principalID == "" {
		return "", ErrEmptyPrincipal
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		PrincipalID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(ttl))),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ceilSecond rounds t up to a whole second. NumericDate keeps whole seconds
// only, and truncating would end a token up to a second before now+ttl.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); r.Before(t) {
		return r.Add(time.Second)
	}
	return t
}

// Validate checks the signature first and the expiry second. A token is
// expired once the clock reaches its expiry.
func (c *Codec) Validate(tokenString string) (ports.TokenClaims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(tokenString, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.TokenClaims{}, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return ports.TokenClaims{
		PrincipalID: cl.PrincipalID,
		ExpiresAt:   cl.ExpiresAt.Time,
	}, nil
}
