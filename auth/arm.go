package auth

// Management-plane (ARM) token acquisition

import (
	"context"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/FBakkensen/vi-access/logging"
)

// ArmTokenSource acquires a management-plane bearer token. Implemented by
// ArmTokenProvider; consumers depend on this interface so tests can inject
// their own source.
type ArmTokenSource interface {
	GetArmToken(ctx context.Context) (string, error)
}

// ArmTokenProvider acquires bearer tokens scoped to the resource-manager
// audience. Every call re-acquires; the credential itself may cache
// internally but this layer never does, so the token is always valid at
// time of use.
type ArmTokenProvider struct {
	credential azcore.TokenCredential
	scope      string
}

// NewArmTokenProvider creates a provider for the given resource-manager base URL.
func NewArmTokenProvider(credential azcore.TokenCredential, armBaseURL string) *ArmTokenProvider {
	return &ArmTokenProvider{
		credential: credential,
		scope:      strings.TrimRight(armBaseURL, "/") + "/.default",
	}
}

// GetArmToken obtains a management-plane token. Transport and identity
// failures surface immediately as *AuthError; retries belong to the HTTP
// layer below, not the identity SDK call.
func (p *ArmTokenProvider) GetArmToken(ctx context.Context) (string, error) {
	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.scope}})
	if err != nil {
		logging.Error("ARM token acquisition failed", "scope", p.scope, "error", err.Error())
		return "", &AuthError{Scope: p.scope, Err: err}
	}
	logging.Debug("Acquired ARM token", "scope", p.scope, "expires", tok.ExpiresOn.Format(time.RFC3339))
	return tok.Token, nil
}
