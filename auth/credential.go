package auth

// Credential resolution for the Azure identity platform

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/FBakkensen/vi-access/config"
	"github.com/FBakkensen/vi-access/logging"
)

// ResolveCredential turns the configured secrets into a token-acquisition
// strategy. When both client id and secret are present an explicit
// application credential is used; otherwise the ambient credential chain
// (environment, managed identity, CLI) takes over, pinned to the configured
// tenant. Absent secrets are not an error, only a constructor failure is.
func ResolveCredential(cfg config.Config) (azcore.TokenCredential, error) {
	if cfg.HasClientCredentials() {
		logging.Debug("Resolving credential", "mode", "clientSecret", "tenantId", cfg.TenantID)
		return azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	}

	logging.Debug("Resolving credential", "mode", "defaultChain", "tenantId", cfg.TenantID)
	return azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: cfg.TenantID,
	})
}
