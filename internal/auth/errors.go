package auth

import "errors"

var (
	// ErrMissingToken means the request carried no bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers malformed, wrongly signed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStaleToken means the token's user no longer exists.
	ErrStaleToken = errors.New("stale token")
	// ErrUnauthorized means a guard ran without an authenticated identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrSigning means tokens cannot be signed, usually a missing secret.
	ErrSigning = errors.New("token signing error")
)
