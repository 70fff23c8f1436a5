package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// DefaultAuthScheme is the scheme expected in the Authorization header.
const DefaultAuthScheme = "Bearer"

// PrincipalResolver turns the Authorization header of a request into the
// principal that sent it. It never mutates persisted state.
type PrincipalResolver struct {
	users  ports.UserRepository
	tokens ports.TokenCodec
	scheme string
}

func NewPrincipalResolver(users ports.UserRepository, tokens ports.TokenCodec, scheme string) *PrincipalResolver {
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	return &PrincipalResolver{users: users, tokens: tokens, scheme: scheme}
}

// Resolve authenticates the request headers, short-circuiting on the first
// failure. Caller-attributable failures are *domain.AuthError; any other
// error is an internal fault of the user lookup.
func (r *PrincipalResolver) Resolve(ctx context.Context, header http.Header) (domain.Principal, error) {
	// 1. Header present.
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return domain.Principal{}, domain.NewAuthError(domain.AuthMissingHeader, nil)
	}

	// 2. "<scheme> <token>".
	scheme, raw, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, r.scheme) || raw == "" {
		return domain.Principal{}, domain.NewAuthError(domain.AuthMalformedHeader, nil)
	}

	// 3. Signature, then expiry.
	claims, err := r.tokens.Validate(raw)
	if err != nil {
		if errors.Is(err, ports.ErrTokenExpired) {
			return domain.Principal{}, domain.NewAuthError(domain.AuthExpiredToken, err)
		}
		return domain.Principal{}, domain.NewAuthError(domain.AuthInvalidToken, err)
	}

	// 4. Payload carries a principal.
	if strings.TrimSpace(claims.PrincipalID) == "" {
		return domain.Principal{}, domain.NewAuthError(domain.AuthInvalidPayload, nil)
	}

	// 5. Principal still exists.
	user, err := r.users.FindByID(ctx, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, domain.NewAuthError(domain.AuthPrincipalNotFound, err)
		}
		return domain.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	// 6. Read-only projection, hash excluded.
	return user.Principal(), nil
}
