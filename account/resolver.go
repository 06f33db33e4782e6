package account

// Account resolution against the resource-manager accounts endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/FBakkensen/vi-access/auth"
	"github.com/FBakkensen/vi-access/config"
	"github.com/FBakkensen/vi-access/httpclient"
	"github.com/FBakkensen/vi-access/logging"
)

// Account is the resolved identity of a Video Indexer account.
// Both ID and Location are required; an account missing either is invalid
// and is never cached or returned.
type Account struct {
	ID       string
	Name     string
	Location string
}

// NotFoundError indicates the lookup succeeded transport-wise but returned an
// account with a missing id or location. Retrying will not fix a structurally
// invalid account, so it is surfaced immediately with the configured
// coordinates for operator diagnosis.
type NotFoundError struct {
	SubscriptionID string
	ResourceGroup  string
	AccountName    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("account %q not found or incomplete in subscription %q resource group %q",
		e.AccountName, e.SubscriptionID, e.ResourceGroup)
}

// armAccount mirrors the ARM account resource shape.
type armAccount struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Properties struct {
		ID string `json:"id"`
	} `json:"properties"`
}

// armAccountList mirrors the ARM collection envelope.
type armAccountList struct {
	Value []armAccount `json:"value"`
}

// Resolver resolves and memoizes the configured account. The cache holds the
// identity (id + location) of exactly one logical account per process; once
// filled it is served for the process lifetime regardless of the name passed
// to later calls.
type Resolver struct {
	cfg      config.Config
	arm      auth.ArmTokenSource
	provider *httpclient.Provider

	mu     sync.Mutex
	cached *Account
}

// NewResolver creates an account resolver with an empty cache.
func NewResolver(cfg config.Config, arm auth.ArmTokenSource, provider *httpclient.Provider) *Resolver {
	return &Resolver{cfg: cfg, arm: arm, provider: provider}
}

// Get returns the resolved account, fetching and validating it on first use.
// The mutex spans the whole check-then-fill sequence so concurrent first
// callers produce a single network fetch. A failed fetch or validation never
// populates the cache; the next call retries the network.
func (r *Resolver) Get(ctx context.Context, name string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		logging.Debug("Account cache hit", "account", r.cached.Name, "location", r.cached.Location)
		return *r.cached, nil
	}

	if name == "" {
		name = r.cfg.AccountName
	}

	acct, err := r.fetch(ctx, name)
	if err != nil {
		return Account{}, err
	}

	r.cached = acct
	logging.Info("Account resolved and cached", "account", acct.Name, "location", acct.Location)
	return *acct, nil
}

// fetch performs the ARM GET and enforces the account invariant.
func (r *Resolver) fetch(ctx context.Context, name string) (*Account, error) {
	armToken, err := r.arm.GetArmToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/subscriptions/%s/resourcegroups/%s/providers/Microsoft.VideoIndexer/accounts/%s?api-version=%s",
		r.cfg.ARMBaseURL, r.cfg.SubscriptionID, r.cfg.ResourceGroup, name, r.cfg.APIVersion)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+armToken)

	resp, err := r.provider.Do(ctx, r.cfg.HTTPClientName, http.MethodGet, url, header, nil)
	if err != nil {
		logging.Error("Account lookup request failed", "account", name, "error", err.Error())
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}
	if !resp.IsSuccess() {
		logging.Error("Account lookup returned error status",
			"account", name,
			"status", fmt.Sprintf("%d", resp.StatusCode),
			"body", string(resp.Body))
		return nil, fmt.Errorf("account lookup failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	var parsed armAccount
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		logging.Error("Account lookup response parse failed", "account", name, "error", err.Error())
		return nil, fmt.Errorf("failed to parse account response: %w", err)
	}

	if parsed.Location == "" || parsed.Properties.ID == "" {
		logging.Error("Account response failed validation",
			"account", name,
			"hasLocation", fmt.Sprintf("%t", parsed.Location != ""),
			"hasId", fmt.Sprintf("%t", parsed.Properties.ID != ""))
		return nil, &NotFoundError{
			SubscriptionID: r.cfg.SubscriptionID,
			ResourceGroup:  r.cfg.ResourceGroup,
			AccountName:    name,
		}
	}

	acct := &Account{
		ID:       parsed.Properties.ID,
		Name:     parsed.Name,
		Location: parsed.Location,
	}
	if acct.Name == "" {
		acct.Name = name
	}
	return acct, nil
}

// List returns all accounts in the configured resource group. Membership can
// change between calls, so list results must not be cached.
func (r *Resolver) List(ctx context.Context) ([]Account, error) {
	armToken, err := r.arm.GetArmToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/subscriptions/%s/resourcegroups/%s/providers/Microsoft.VideoIndexer/accounts?api-version=%s",
		r.cfg.ARMBaseURL, r.cfg.SubscriptionID, r.cfg.ResourceGroup, r.cfg.APIVersion)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+armToken)

	resp, err := r.provider.Do(ctx, r.cfg.HTTPClientName, http.MethodGet, url, header, nil)
	if err != nil {
		logging.Error("Account list request failed", "error", err.Error())
		return nil, fmt.Errorf("account list failed: %w", err)
	}
	if !resp.IsSuccess() {
		logging.Error("Account list returned error status",
			"status", fmt.Sprintf("%d", resp.StatusCode),
			"body", string(resp.Body))
		return nil, fmt.Errorf("account list failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}

	var parsed armAccountList
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		logging.Error("Account list response parse failed", "error", err.Error())
		return nil, fmt.Errorf("failed to parse account list response: %w", err)
	}

	accounts := make([]Account, 0, len(parsed.Value))
	for _, a := range parsed.Value {
		accounts = append(accounts, Account{
			ID:       a.Properties.ID,
			Name:     a.Name,
			Location: a.Location,
		})
	}

	logging.Debug("Account list completed", "count", fmt.Sprintf("%d", len(accounts)))
	return accounts, nil
}
