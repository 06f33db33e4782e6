package azure

// Azure Resource Manager diagnostics

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/FBakkensen/vi-access/logging"
)

// Subscription represents an Azure subscription
type Subscription struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TenantID    string `json:"tenantId"`
	State       string `json:"state"`
	DisplayName string `json:"displayName"`
}

// FormatForDisplay returns a formatted string for displaying the subscription
func (s Subscription) FormatForDisplay() string {
	return fmt.Sprintf("%s (%s) - %s", s.DisplayName, s.ID, s.State)
}

// SubscriptionsClient verifies the resolved credential can reach the
// resource manager before any token flow is attempted.
type SubscriptionsClient struct {
	credential azcore.TokenCredential
}

// NewSubscriptionsClient creates a diagnostics client from a resolved credential.
func NewSubscriptionsClient(credential azcore.TokenCredential) (*SubscriptionsClient, error) {
	if credential == nil {
		return nil, fmt.Errorf("no Azure credential available")
	}
	return &SubscriptionsClient{credential: credential}, nil
}

// ListSubscriptions lists all subscriptions accessible to the credential.
func (c *SubscriptionsClient) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	client, err := armsubscriptions.NewClient(c.credential, nil)
	if err != nil {
		logging.Error("Failed to create subscriptions client", "error", err.Error())
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	var subscriptions []Subscription
	pager := client.NewListPager(nil)

	pageCount := 0
	for pager.More() {
		pageCount++
		page, err := pager.NextPage(ctx)
		if err != nil {
			logging.Error("Failed to get subscriptions page", "pageNumber", fmt.Sprintf("%d", pageCount), "error", err.Error())
			return nil, fmt.Errorf("failed to get subscriptions page: %w", err)
		}

		for _, sub := range page.Value {
			if sub.SubscriptionID == nil || sub.DisplayName == nil || sub.State == nil {
				logging.Warn("Skipping incomplete subscription data", "pageNumber", fmt.Sprintf("%d", pageCount))
				continue
			}

			subscription := Subscription{
				ID:          *sub.SubscriptionID,
				DisplayName: *sub.DisplayName,
				State:       string(*sub.State),
			}
			if sub.TenantID != nil {
				subscription.TenantID = *sub.TenantID
			}
			subscription.Name = subscription.DisplayName

			subscriptions = append(subscriptions, subscription)
		}
	}

	logging.Info("ListSubscriptions completed",
		"totalSubscriptions", fmt.Sprintf("%d", len(subscriptions)),
		"pagesProcessed", fmt.Sprintf("%d", pageCount))
	return subscriptions, nil
}
