package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// Catalog enumerates the regions the subscription can deploy into.
// It satisfies the quota.Catalog interface.
type Catalog struct {
	session *Session
}

// NewCatalog creates a catalog bound to a session.
func NewCatalog(session *Session) *Catalog {
	return &Catalog{session: session}
}

// ListRegions returns the names of every location visible to the
// subscription. The resolver intersects this with the manifest's
// allow-list.
func (c *Catalog) ListRegions(ctx context.Context) ([]string, error) {
	subscriptionID, err := c.session.SubscriptionID(ctx)
	if err != nil {
		return nil, err
	}

	client, err := armsubscriptions.NewClient(c.session.Credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	var regions []string
	pager := client.NewListLocationsPager(subscriptionID, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list locations: %w", err)
		}
		for _, location := range page.Value {
			if location.Name != nil {
				regions = append(regions, *location.Name)
			}
		}
	}

	return regions, nil
}
