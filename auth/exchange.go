package auth

// Exchange of an ARM token for a scoped Video Indexer access token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/FBakkensen/vi-access/config"
	"github.com/FBakkensen/vi-access/httpclient"
	"github.com/FBakkensen/vi-access/logging"
)

// Permission selects the privilege level of an exchanged access token.
type Permission string

const (
	PermissionReader                Permission = "Reader"
	PermissionContributor           Permission = "Contributor"
	PermissionMyAccessAdministrator Permission = "MyAccessAdministrator"
	PermissionOwner                 Permission = "Owner"
)

// Scope selects the level the exchanged token is valid for.
type Scope string

const (
	ScopeAccount Scope = "Account"
	ScopeProject Scope = "Project"
	ScopeVideo   Scope = "Video"
)

// Defaults for the common case of account-level API access.
const (
	DefaultPermission = PermissionContributor
	DefaultScope      = ScopeAccount
)

// accessTokenRequest is the generateAccessToken POST body.
type accessTokenRequest struct {
	PermissionType Permission `json:"permissionType"`
	Scope          Scope      `json:"scope"`
}

// accessTokenResponse is the generateAccessToken response body.
type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// TokenExchanger trades an ARM token for a narrowly scoped account access
// token via the service's generateAccessToken endpoint. The Authorization
// header is attached to each request, never to the shared client, so
// concurrent exchanges with different tokens cannot race.
type TokenExchanger struct {
	cfg      config.Config
	provider *httpclient.Provider
}

// NewTokenExchanger creates an exchanger using the named durable client.
func NewTokenExchanger(cfg config.Config, provider *httpclient.Provider) *TokenExchanger {
	return &TokenExchanger{cfg: cfg, provider: provider}
}

// GetAccountToken exchanges armToken for an access token limited to the given
// permission and scope. Non-2xx responses and unusable bodies surface as
// *TokenExchangeError after the retry budget is exhausted.
func (e *TokenExchanger) GetAccountToken(ctx context.Context, armToken string, permission Permission, scope Scope) (string, error) {
	url := fmt.Sprintf("%s/subscriptions/%s/resourcegroups/%s/providers/Microsoft.VideoIndexer/accounts/%s/generateAccessToken?api-version=%s",
		e.cfg.ARMBaseURL, e.cfg.SubscriptionID, e.cfg.ResourceGroup, e.cfg.AccountName, e.cfg.APIVersion)

	body, err := json.Marshal(accessTokenRequest{PermissionType: permission, Scope: scope})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+armToken)

	logging.Debug("Exchanging ARM token for account token",
		"account", e.cfg.AccountName,
		"permission", string(permission),
		"scope", string(scope))

	resp, err := e.provider.Do(ctx, e.cfg.HTTPClientName, http.MethodPost, url, header, body)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logging.Error("Token exchange request failed", "account", e.cfg.AccountName, "error", err.Error())
		return "", &TokenExchangeError{Err: err}
	}

	if !resp.IsSuccess() {
		logging.Error("Token exchange returned error status",
			"account", e.cfg.AccountName,
			"status", fmt.Sprintf("%d", resp.StatusCode),
			"body", string(resp.Body))
		return "", &TokenExchangeError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var parsed accessTokenResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		logging.Error("Token exchange response parse failed", "error", err.Error())
		return "", &TokenExchangeError{Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if parsed.AccessToken == "" {
		logging.Error("Token exchange response contained no access token", "account", e.cfg.AccountName)
		return "", &TokenExchangeError{Err: errors.New("response contained no access token")}
	}

	logging.Info("Account access token acquired",
		"account", e.cfg.AccountName,
		"permission", string(permission),
		"scope", string(scope))
	return parsed.AccessToken, nil
}
