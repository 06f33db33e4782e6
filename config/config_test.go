package config

import (
	"strings"
	"testing"
)

// clearEnv blanks every variable LoadConfig reads so tests are hermetic.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VI_TENANT_ID", "AZURE_TENANT_ID",
		"VI_CLIENT_ID", "AZURE_CLIENT_ID",
		"VI_CLIENT_SECRET", "AZURE_CLIENT_SECRET",
		"VI_SUBSCRIPTION_ID", "AZURE_SUBSCRIPTION_ID", "ARM_SUBSCRIPTION_ID",
		"VI_RESOURCE_GROUP", "VI_ACCOUNT_NAME",
		"VI_API_VERSION", "VI_ARM_BASE_URL", "VI_API_ENDPOINT", "VI_HTTP_CLIENT_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()

	if cfg.APIVersion != DefaultAPIVersion {
		t.Errorf("Expected default api version %q, got %q", DefaultAPIVersion, cfg.APIVersion)
	}
	if cfg.ARMBaseURL != DefaultARMBaseURL {
		t.Errorf("Expected default ARM base %q, got %q", DefaultARMBaseURL, cfg.ARMBaseURL)
	}
	if cfg.APIEndpoint != DefaultAPIEndpoint {
		t.Errorf("Expected default API endpoint %q, got %q", DefaultAPIEndpoint, cfg.APIEndpoint)
	}
	if cfg.HTTPClientName != DefaultHTTPClientName {
		t.Errorf("Expected default client name %q, got %q", DefaultHTTPClientName, cfg.HTTPClientName)
	}
	if cfg.TenantID != "" || cfg.ClientID != "" {
		t.Errorf("Expected empty credentials, got tenant=%q client=%q", cfg.TenantID, cfg.ClientID)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VI_TENANT_ID", "tenant-1")
	t.Setenv("VI_CLIENT_ID", "client-1")
	t.Setenv("VI_CLIENT_SECRET", "secret-1")
	t.Setenv("VI_SUBSCRIPTION_ID", "sub-1")
	t.Setenv("VI_RESOURCE_GROUP", "rg-1")
	t.Setenv("VI_ACCOUNT_NAME", "acct-1")
	t.Setenv("VI_API_VERSION", "2025-01-01")
	t.Setenv("VI_ARM_BASE_URL", "https://management.example.com/")
	t.Setenv("VI_API_ENDPOINT", "https://api.example.com/")
	t.Setenv("VI_HTTP_CLIENT_NAME", "custom")

	cfg := LoadConfig()

	if cfg.TenantID != "tenant-1" || cfg.ClientID != "client-1" || cfg.ClientSecret != "secret-1" {
		t.Errorf("Credentials not loaded: tenant=%q client=%q", cfg.TenantID, cfg.ClientID)
	}
	if cfg.SubscriptionID != "sub-1" || cfg.ResourceGroup != "rg-1" || cfg.AccountName != "acct-1" {
		t.Errorf("Account coordinates not loaded: %+v", cfg)
	}
	if cfg.APIVersion != "2025-01-01" {
		t.Errorf("Expected api version override, got %q", cfg.APIVersion)
	}
	if cfg.ARMBaseURL != "https://management.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.ARMBaseURL)
	}
	if cfg.APIEndpoint != "https://api.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.APIEndpoint)
	}
	if cfg.HTTPClientName != "custom" {
		t.Errorf("Expected client name override, got %q", cfg.HTTPClientName)
	}
}

func TestLoadConfig_AzureEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("AZURE_TENANT_ID", "az-tenant")
	t.Setenv("AZURE_CLIENT_ID", "az-client")
	t.Setenv("AZURE_CLIENT_SECRET", "az-secret")
	t.Setenv("ARM_SUBSCRIPTION_ID", "arm-sub")

	cfg := LoadConfig()

	if cfg.TenantID != "az-tenant" {
		t.Errorf("Expected AZURE_TENANT_ID fallback, got %q", cfg.TenantID)
	}
	if cfg.ClientID != "az-client" {
		t.Errorf("Expected AZURE_CLIENT_ID fallback, got %q", cfg.ClientID)
	}
	if cfg.SubscriptionID != "arm-sub" {
		t.Errorf("Expected ARM_SUBSCRIPTION_ID fallback, got %q", cfg.SubscriptionID)
	}
}

func TestLoadConfig_ViVariablesTakePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("VI_TENANT_ID", "vi-tenant")
	t.Setenv("AZURE_TENANT_ID", "az-tenant")

	cfg := LoadConfig()
	if cfg.TenantID != "vi-tenant" {
		t.Errorf("Expected VI_TENANT_ID to win, got %q", cfg.TenantID)
	}
}

func TestHasClientCredentials(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected bool
	}{
		{"both present", Config{ClientID: "c", ClientSecret: "s"}, true},
		{"id only", Config{ClientID: "c"}, false},
		{"secret only", Config{ClientSecret: "s"}, false},
		{"neither", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasClientCredentials(); got != tt.expected {
				t.Errorf("Expected %t, got %t", tt.expected, got)
			}
		})
	}
}

func TestValidateForTokenFlows(t *testing.T) {
	valid := Config{SubscriptionID: "s", ResourceGroup: "r", AccountName: "a"}
	if err := valid.ValidateForTokenFlows(); err != nil {
		t.Errorf("Expected valid config to pass, got %v", err)
	}

	missing := Config{ResourceGroup: "r"}
	err := missing.ValidateForTokenFlows()
	if err == nil {
		t.Fatal("Expected error for missing fields")
	}
	if !strings.Contains(err.Error(), "subscriptionId") || !strings.Contains(err.Error(), "accountName") {
		t.Errorf("Expected missing field names in error, got %v", err)
	}
}

func TestGetSettingValue_MasksSecret(t *testing.T) {
	cfg := Config{ClientSecret: "super-secret-value"}

	value, err := cfg.GetSettingValue("clientSecret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if value != "supe...alue" {
		t.Errorf("Expected masked display, got %q", value)
	}

	short := Config{ClientSecret: "abc"}
	if v, _ := short.GetSettingValue("clientSecret"); v != "***" {
		t.Errorf("Expected short secret fully masked, got %q", v)
	}
}

func TestGetSettingValue_UnknownSetting(t *testing.T) {
	cfg := Config{}
	if _, err := cfg.GetSettingValue("nope"); err == nil {
		t.Error("Expected error for unknown setting")
	}
}

func TestListAllSettings(t *testing.T) {
	cfg := Config{
		TenantID:       "tenant",
		APIVersion:     DefaultAPIVersion,
		ARMBaseURL:     DefaultARMBaseURL,
		APIEndpoint:    DefaultAPIEndpoint,
		HTTPClientName: DefaultHTTPClientName,
	}

	settings := cfg.ListAllSettings()
	if settings["tenantId"] != "tenant" {
		t.Errorf("Expected tenantId in settings, got %q", settings["tenantId"])
	}
	if settings["clientSecret"] != "(not set)" {
		t.Errorf("Expected unset secret marker, got %q", settings["clientSecret"])
	}
	if settings["accountName"] != "(not set)" {
		t.Errorf("Expected unset account marker, got %q", settings["accountName"])
	}
}
