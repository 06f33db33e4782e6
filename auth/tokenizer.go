package auth

// Facade composing ARM acquisition and account-token exchange

import (
	"context"

	"github.com/FBakkensen/vi-access/logging"
)

// AccountTokenExchanger trades an ARM token for a scoped access token.
// Implemented by TokenExchanger.
type AccountTokenExchanger interface {
	GetAccountToken(ctx context.Context, armToken string, permission Permission, scope Scope) (string, error)
}

// Tokenizer is the single capability downstream API callers consume. Each
// call re-derives both tokens from scratch: the service token's lifetime is
// unknown, so nothing is cached and the result is always valid at time of use.
type Tokenizer struct {
	arm       ArmTokenSource
	exchanger AccountTokenExchanger
}

// NewTokenizer composes an ARM token source with an account token exchanger.
func NewTokenizer(arm ArmTokenSource, exchanger AccountTokenExchanger) *Tokenizer {
	return &Tokenizer{arm: arm, exchanger: exchanger}
}

// GetAccessToken returns an account access token with the default
// Contributor/Account pair.
func (t *Tokenizer) GetAccessToken(ctx context.Context) (string, error) {
	return t.GetAccessTokenWithScope(ctx, DefaultPermission, DefaultScope)
}

// GetAccessTokenWithScope returns an account access token limited to the
// given permission and scope. Failures are logged and propagated, never
// swallowed.
func (t *Tokenizer) GetAccessTokenWithScope(ctx context.Context, permission Permission, scope Scope) (string, error) {
	armToken, err := t.arm.GetArmToken(ctx)
	if err != nil {
		logging.Error("Access token derivation failed at ARM stage", "error", err.Error())
		return "", err
	}

	accessToken, err := t.exchanger.GetAccountToken(ctx, armToken, permission, scope)
	if err != nil {
		logging.Error("Access token derivation failed at exchange stage", "error", err.Error())
		return "", err
	}

	logging.Debug("Access token derived", "permission", string(permission), "scope", string(scope))
	return accessToken, nil
}
