package azure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/quota"
)

// Unit alias tables per provider. The manifest speaks in user-facing
// unit labels; providers report their own counter names. Exact matches
// win; aliases are consulted in order afterwards.
var (
	computeAliases = map[string][]string{
		"vcpus":  {"cores"},
		"vcores": {"cores"},
	}

	webAliases = map[string][]string{
		"staticsites": {"staticsitescount", "sites"},
		"apps":        {"sites"},
	}

	postgresAliases = map[string][]string{
		"vcores":  {"cores", "generalpurposevcores"},
		"servers": {"flexibleserverscount", "servers"},
	}

	containerAppsAliases = map[string][]string{
		"cores":        {"managedenvironmentcores", "managedenvironmentgeneralpurposecores"},
		"environments": {"managedenvironmentcount"},
		"apps":         {"containerappscount"},
	}
)

// NewProbeRegistry wires the provider-specific probes behind the
// namespace-prefix dispatch, with the generic usages probe as fallback
// for namespaces without a specialized one.
func NewProbeRegistry(session *Session, usages *UsagesClient) *quota.Registry {
	registry := quota.NewRegistry(&genericProbe{session: session, usages: usages})
	registry.Register("Microsoft.Compute", &computeProbe{session: session})
	registry.Register("Microsoft.Web", &restProbe{
		session:    session,
		usages:     usages,
		namespace:  "Microsoft.Web",
		apiVersion: "2023-12-01",
		aliases:    webAliases,
	})
	registry.Register("Microsoft.DBforPostgreSQL", &restProbe{
		session:    session,
		usages:     usages,
		namespace:  "Microsoft.DBforPostgreSQL",
		apiVersion: "2024-08-01",
		aliases:    postgresAliases,
	})
	registry.Register("Microsoft.App", &containerAppsProbe{
		restProbe: restProbe{
			session:    session,
			usages:     usages,
			namespace:  "Microsoft.App",
			apiVersion: "2024-03-01",
			aliases:    containerAppsAliases,
		},
	})
	return registry
}

// matchObservation resolves the requested unit against the reported
// counters. Exact unit match first, then the alias table. An unmatched
// unit yields usage=0, limit=0 so it reads as insufficient, never as
// unlimited.
func matchObservation(usages []Usage, resourceType, region string, capacity manifest.Capacity, aliases map[string][]string) quota.Observation {
	obs := quota.Observation{
		ResourceType: resourceType,
		Region:       region,
		Unit:         capacity.Unit,
		Required:     capacity.Required,
	}

	names := append([]string{capacity.Unit}, aliases[strings.ToLower(capacity.Unit)]...)
	for _, name := range names {
		for _, usage := range usages {
			if strings.EqualFold(usage.Name, name) || strings.EqualFold(usage.LocalizedName, name) {
				obs.CurrentUsage = usage.CurrentValue
				obs.Limit = usage.Limit
				return obs
			}
		}
	}

	return obs
}

func probeUnavailable(err error) error {
	return fmt.Errorf("%w: %v", quota.ErrProbeUnavailable, err)
}

// restProbe checks quota through a provider's region-level usages
// endpoint.
type restProbe struct {
	session    *Session
	usages     *UsagesClient
	namespace  string
	apiVersion string
	aliases    map[string][]string
}

func (p *restProbe) CheckQuota(ctx context.Context, resourceType, region string, capacity manifest.Capacity) (quota.Observation, error) {
	subscriptionID, err := p.session.SubscriptionID(ctx)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	path := fmt.Sprintf("/subscriptions/%s/providers/%s/locations/%s/usages",
		subscriptionID, p.namespace, region)
	usages, err := p.usages.List(ctx, path, p.apiVersion)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	return matchObservation(usages, resourceType, region, capacity, p.aliases), nil
}

// containerAppsProbe narrows the check to one managed environment when
// the capacity carries environment hints; apps share the environment's
// core pool, so the region-level counter would overstate headroom.
type containerAppsProbe struct {
	restProbe
}

func (p *containerAppsProbe) CheckQuota(ctx context.Context, resourceType, region string, capacity manifest.Capacity) (quota.Observation, error) {
	if capacity.EnvironmentName == "" {
		return p.restProbe.CheckQuota(ctx, resourceType, region, capacity)
	}

	subscriptionID, err := p.session.SubscriptionID(ctx)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	path := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.App/managedEnvironments/%s/usages",
		subscriptionID, capacity.ResourceGroup, capacity.EnvironmentName)
	usages, err := p.usages.List(ctx, path, p.apiVersion)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	return matchObservation(usages, resourceType, region, capacity, p.aliases), nil
}

// genericProbe is the fallback for namespaces without a specialized
// probe. It derives the namespace from the resource type and queries
// the same generic usages shape with no alias table.
type genericProbe struct {
	session *Session
	usages  *UsagesClient
}

const genericUsagesAPIVersion = "2023-07-01"

func (p *genericProbe) CheckQuota(ctx context.Context, resourceType, region string, capacity manifest.Capacity) (quota.Observation, error) {
	namespace := resourceType
	if idx := strings.Index(resourceType, "/"); idx >= 0 {
		namespace = resourceType[:idx]
	}

	subscriptionID, err := p.session.SubscriptionID(ctx)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	path := fmt.Sprintf("/subscriptions/%s/providers/%s/locations/%s/usages",
		subscriptionID, namespace, region)
	usages, err := p.usages.List(ctx, path, genericUsagesAPIVersion)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	return matchObservation(usages, resourceType, region, capacity, nil), nil
}

// computeProbe uses the typed compute SDK client; vCPU quota is family
// scoped and the typed client reports every family counter.
type computeProbe struct {
	session *Session

	mu     sync.Mutex
	client *armcompute.UsageClient
}

func (p *computeProbe) usageClient(ctx context.Context) (*armcompute.UsageClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	subscriptionID, err := p.session.SubscriptionID(ctx)
	if err != nil {
		return nil, err
	}

	client, err := armcompute.NewUsageClient(subscriptionID, p.session.Credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute usage client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *computeProbe) CheckQuota(ctx context.Context, resourceType, region string, capacity manifest.Capacity) (quota.Observation, error) {
	client, err := p.usageClient(ctx)
	if err != nil {
		return quota.Observation{}, probeUnavailable(err)
	}

	var usages []Usage
	pager := client.NewListPager(region, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return quota.Observation{}, probeUnavailable(err)
		}
		for _, item := range page.Value {
			if item == nil || item.Name == nil {
				continue
			}
			usage := Usage{}
			if item.Name.Value != nil {
				usage.Name = *item.Name.Value
			}
			if item.Name.LocalizedValue != nil {
				usage.LocalizedName = *item.Name.LocalizedValue
			}
			if item.CurrentValue != nil {
				usage.CurrentValue = float64(*item.CurrentValue)
			}
			if item.Limit != nil {
				usage.Limit = float64(*item.Limit)
			}
			usages = append(usages, usage)
		}
	}

	return matchObservation(usages, resourceType, region, capacity, computeAliases), nil
}
