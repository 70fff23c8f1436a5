package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AuthErrorKind distinguishes why a request could not be authenticated.
// Every kind maps to 401 at the HTTP boundary.
type AuthErrorKind string

const (
	AuthMissingHeader     AuthErrorKind = "missing_header"
	AuthMalformedHeader   AuthErrorKind = "malformed_header"
	AuthInvalidToken      AuthErrorKind = "invalid_token"
	AuthExpiredToken      AuthErrorKind = "expired_token"
	AuthInvalidPayload    AuthErrorKind = "invalid_payload"
	AuthPrincipalNotFound AuthErrorKind = "principal_not_found"
)

// AuthError is returned by the principal resolver for every rejection that is
// the caller's fault.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized: %s: %v", e.Kind, e.Err)
	}
	return "unauthorized: " + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the client-visible description of the rejection.
func (e *AuthError) Message() string {
	switch e.Kind {
	case AuthMissingHeader:
		return "missing authorization header"
	case AuthMalformedHeader:
		return "invalid authorization header"
	case AuthExpiredToken:
		return "token expired"
	case AuthInvalidPayload:
		return "invalid token payload"
	case AuthPrincipalNotFound:
		return "user not found"
	default:
		return "invalid token"
	}
}

// NewAuthError builds an AuthError of the given kind.
func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// AsAuthError unwraps err into an *AuthError when possible.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// QuotaExceededError rejects a creation that would exceed the tier limit.
type QuotaExceededError struct {
	Tier  Tier
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("cannot create more than %d companies", e.Limit)
}

// UploadBound names the upload policy bound a file violated.
type UploadBound string

const (
	BoundSize   UploadBound = "size"
	BoundFormat UploadBound = "format"
	BoundPolicy UploadBound = "policy"
)

// ValidationError rejects an inbound file before any network upload.
type ValidationError struct {
	Slot    string
	Bound   UploadBound
	Limit   int64
	Got     int64
	Format  string
	Allowed []string
}

func (e *ValidationError) Error() string {
	switch e.Bound {
	case BoundSize:
		return fmt.Sprintf("%s: file size %d exceeds maximum allowed size of %d bytes", e.Slot, e.Got, e.Limit)
	case BoundFormat:
		return fmt.Sprintf("%s: file format %q is not allowed, allowed formats: %s", e.Slot, e.Format, strings.Join(e.Allowed, ", "))
	default:
		return fmt.Sprintf("%s: no upload policy configured", e.Slot)
	}
}
