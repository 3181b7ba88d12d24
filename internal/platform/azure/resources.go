package azure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// Resource is a deployed resource discovered in a resource group.
type Resource struct {
	ID   string
	Name string
	Type string
}

// deleteAPIVersions pins the api-version used for DELETE calls per
// resource type. Anything else uses the generic fallback, which ARM
// accepts for most providers.
var deleteAPIVersions = map[string]string{
	"microsoft.dbforpostgresql/flexibleservers": "2024-08-01",
	"microsoft.app/containerapps":               "2024-03-01",
	"microsoft.app/managedenvironments":         "2024-03-01",
	"microsoft.containerregistry/registries":    "2023-07-01",
	"microsoft.keyvault/vaults":                 "2023-07-01",
	"microsoft.operationalinsights/workspaces":  "2023-09-01",
	"microsoft.web/staticsites":                 "2023-12-01",
}

const genericDeleteAPIVersion = "2021-04-01"

// DeleteAPIVersion returns the api-version to use when deleting a
// resource of the given type.
func DeleteAPIVersion(resourceType string) string {
	if v, ok := deleteAPIVersions[strings.ToLower(resourceType)]; ok {
		return v
	}
	return genericDeleteAPIVersion
}

// Resources lists and deletes deployed resources during teardown.
type Resources struct {
	session *Session

	mu      sync.Mutex
	client  *armresources.Client
	groups  *armresources.ResourceGroupsClient
}

// NewResources creates a resource operations client bound to a session.
func NewResources(session *Session) *Resources {
	return &Resources{session: session}
}

func (r *Resources) clients(ctx context.Context) (*armresources.Client, *armresources.ResourceGroupsClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, r.groups, nil
	}

	subscriptionID, err := r.session.SubscriptionID(ctx)
	if err != nil {
		return nil, nil, err
	}

	client, err := armresources.NewClient(subscriptionID, r.session.Credential, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resources client: %w", err)
	}
	groups, err := armresources.NewResourceGroupsClient(subscriptionID, r.session.Credential, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}

	r.client, r.groups = client, groups
	return client, groups, nil
}

// ListByResourceGroup returns every resource in a resource group.
func (r *Resources) ListByResourceGroup(ctx context.Context, resourceGroup string) ([]Resource, error) {
	client, _, err := r.clients(ctx)
	if err != nil {
		return nil, err
	}

	var resources []Resource
	pager := client.NewListByResourceGroupPager(resourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resources in %s: %w", resourceGroup, err)
		}
		for _, item := range page.Value {
			if item == nil || item.ID == nil {
				continue
			}
			res := Resource{ID: *item.ID}
			if item.Name != nil {
				res.Name = *item.Name
			}
			if item.Type != nil {
				res.Type = *item.Type
			}
			resources = append(resources, res)
		}
	}

	return resources, nil
}

// DeleteByID deletes one resource and waits for completion.
func (r *Resources) DeleteByID(ctx context.Context, resourceID, resourceType string) error {
	client, _, err := r.clients(ctx)
	if err != nil {
		return err
	}

	poller, err := client.BeginDeleteByID(ctx, resourceID, DeleteAPIVersion(resourceType), nil)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", resourceID, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", resourceID, err)
	}

	return nil
}

// DeleteResourceGroup deletes the resource group itself and waits for
// completion. Called strictly after all member resources are gone;
// failures here (purge protection on a vault, locks) are reported to
// the caller, never swallowed.
func (r *Resources) DeleteResourceGroup(ctx context.Context, name string) error {
	_, groups, err := r.clients(ctx)
	if err != nil {
		return err
	}

	poller, err := groups.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}

	return nil
}
