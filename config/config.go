package config

// Application configuration logic

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultAPIVersion     = "2024-01-01"
	DefaultARMBaseURL     = "https://management.azure.com"
	DefaultAPIEndpoint    = "https://api.videoindexer.ai"
	DefaultHTTPClientName = "videoIndexer"
)

// keyring coordinates for the optional client-secret fallback
const (
	keyringService   = "vi-access"
	keyringSecretKey = "client-secret" // #nosec G101 -- key name, not a credential
)

// Config holds the settings the token and account flows require.
// Values are immutable once loaded at process start.
type Config struct {
	TenantID       string `json:"tenantId"`
	ClientID       string `json:"clientId"`
	ClientSecret   string `json:"-"`
	SubscriptionID string `json:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup"`
	AccountName    string `json:"accountName"`
	APIVersion     string `json:"apiVersion"`
	ARMBaseURL     string `json:"armBaseUrl"`
	APIEndpoint    string `json:"apiEndpoint"`
	HTTPClientName string `json:"httpClientName"`
}

// LoadConfig loads configuration from environment variables.
// Every field has a documented fallback; absent credentials are not an error
// because the credential resolver falls through to the ambient chain.
func LoadConfig() Config {
	cfg := Config{
		TenantID:       firstEnv("VI_TENANT_ID", "AZURE_TENANT_ID"),
		ClientID:       firstEnv("VI_CLIENT_ID", "AZURE_CLIENT_ID"),
		ClientSecret:   firstEnv("VI_CLIENT_SECRET", "AZURE_CLIENT_SECRET"),
		SubscriptionID: firstEnv("VI_SUBSCRIPTION_ID", "AZURE_SUBSCRIPTION_ID", "ARM_SUBSCRIPTION_ID"),
		ResourceGroup:  os.Getenv("VI_RESOURCE_GROUP"),
		AccountName:    os.Getenv("VI_ACCOUNT_NAME"),
		APIVersion:     DefaultAPIVersion,
		ARMBaseURL:     DefaultARMBaseURL,
		APIEndpoint:    DefaultAPIEndpoint,
		HTTPClientName: DefaultHTTPClientName,
	}

	if v := strings.TrimSpace(os.Getenv("VI_API_VERSION")); v != "" {
		cfg.APIVersion = v
	}
	if v := strings.TrimSpace(os.Getenv("VI_ARM_BASE_URL")); v != "" {
		cfg.ARMBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("VI_API_ENDPOINT")); v != "" {
		cfg.APIEndpoint = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("VI_HTTP_CLIENT_NAME")); v != "" {
		cfg.HTTPClientName = v
	}

	// Fall back to the OS keyring for the client secret; best-effort only,
	// absence simply leaves the ambient credential chain in charge.
	if cfg.ClientSecret == "" {
		if secret, err := keyring.Get(keyringService, keyringSecretKey); err == nil {
			cfg.ClientSecret = secret
		}
	}

	return cfg
}

// firstEnv returns the first non-empty environment variable value.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// HasClientCredentials reports whether an explicit application credential is configured.
func (c *Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ValidateForTokenFlows checks the fields the ARM and exchange calls cannot do without.
func (c *Config) ValidateForTokenFlows() error {
	var missing []string
	if c.SubscriptionID == "" {
		missing = append(missing, "subscriptionId (VI_SUBSCRIPTION_ID)")
	}
	if c.ResourceGroup == "" {
		missing = append(missing, "resourceGroup (VI_RESOURCE_GROUP)")
	}
	if c.AccountName == "" {
		missing = append(missing, "accountName (VI_ACCOUNT_NAME)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete configuration, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSettingValue returns the current value of a setting as a string
func (c *Config) GetSettingValue(name string) (string, error) {
	switch name {
	case "tenantId":
		return orNotSet(c.TenantID), nil
	case "clientId":
		return orNotSet(c.ClientID), nil
	case "clientSecret":
		return maskSecret(c.ClientSecret), nil
	case "subscriptionId":
		return orNotSet(c.SubscriptionID), nil
	case "resourceGroup":
		return orNotSet(c.ResourceGroup), nil
	case "accountName":
		return orNotSet(c.AccountName), nil
	case "apiVersion":
		return c.APIVersion, nil
	case "armBaseUrl":
		return c.ARMBaseURL, nil
	case "apiEndpoint":
		return c.APIEndpoint, nil
	case "httpClientName":
		return c.HTTPClientName, nil
	default:
		return "", fmt.Errorf("unknown setting: %s", name)
	}
}

// ListAllSettings returns a map of all settings and their current values
func (c *Config) ListAllSettings() map[string]string {
	return map[string]string{
		"tenantId":       orNotSet(c.TenantID),
		"clientId":       orNotSet(c.ClientID),
		"clientSecret":   maskSecret(c.ClientSecret),
		"subscriptionId": orNotSet(c.SubscriptionID),
		"resourceGroup":  orNotSet(c.ResourceGroup),
		"accountName":    orNotSet(c.AccountName),
		"apiVersion":     c.APIVersion,
		"armBaseUrl":     c.ARMBaseURL,
		"apiEndpoint":    c.APIEndpoint,
		"httpClientName": c.HTTPClientName,
	}
}

// orNotSet substitutes a display marker for empty values
func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// maskSecret masks a secret for display
func maskSecret(v string) string {
	if v == "" {
		return "(not set)"
	}
	if len(v) > 8 {
		return v[:4] + "..." + v[len(v)-4:]
	}
	return "***"
}
