package ports

import (
	"context"
	"errors"
	"time"
)

// Token validation failures. Both reject the request; they are kept apart for
// logging and metrics.
var (
	ErrTokenInvalid = errors.New("token signature invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the decoded payload of a credential.
type TokenClaims struct {
	PrincipalID string
	ExpiresAt   time.Time
}

// TokenCodec issues and validates signed, time-bounded credentials.
//
// Validate wraps ErrTokenInvalid or ErrTokenExpired on failure.
type TokenCodec interface {
	Issue(principalID string, ttl time.Duration) (string, error)
	Validate(token string) (TokenClaims, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// OwnerLocker serializes company creation per owner. Acquire returns
// domain.ErrCreationInProgress when the lock is held elsewhere.
type OwnerLocker interface {
	Acquire(ctx context.Context, ownerID string) (release func(context.Context), err error)
}
