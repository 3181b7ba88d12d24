// Package azure implements the region catalog, capacity probes and
// resource operations against the Azure Resource Manager APIs.
package azure

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// Session carries the credential and subscription for one invocation.
// The subscription ID is discovered lazily and cached on the instance,
// so separate sessions never share state.
type Session struct {
	Credential azcore.TokenCredential

	mu             sync.Mutex
	subscriptionID string
}

// NewSession builds a session from the ambient Azure credential chain
// (environment, workload identity, managed identity, az CLI).
// subscriptionID may be empty, in which case the first subscription
// visible to the identity is used.
func NewSession(subscriptionID string) (*Session, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire Azure credentials: %w", err)
	}
	return &Session{Credential: cred, subscriptionID: subscriptionID}, nil
}

// NewSessionWithCredential builds a session around an existing credential.
func NewSessionWithCredential(cred azcore.TokenCredential, subscriptionID string) *Session {
	return &Session{Credential: cred, subscriptionID: subscriptionID}
}

// SubscriptionID returns the configured subscription, discovering the
// default one on first use when the manifest leaves it unset.
func (s *Session) SubscriptionID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscriptionID != "" {
		return s.subscriptionID, nil
	}

	client, err := armsubscriptions.NewClient(s.Credential, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list subscriptions: %w", err)
		}
		for _, sub := range page.Value {
			if sub.SubscriptionID != nil {
				s.subscriptionID = *sub.SubscriptionID
				return s.subscriptionID, nil
			}
		}
	}

	return "", fmt.Errorf("no subscription visible to the signed-in identity")
}
