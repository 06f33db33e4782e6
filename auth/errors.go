package auth

import (
	"fmt"
)

// AuthError indicates the identity provider could not issue an ARM token.
// It is never retried at this layer; the failure surfaces immediately.
type AuthError struct {
	Scope string
	Err   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to acquire ARM token for scope %q: %v", e.Scope, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TokenExchangeError indicates the generateAccessToken endpoint returned a
// non-2xx response or an unusable body. The raw body is kept for diagnosis.
type TokenExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }
