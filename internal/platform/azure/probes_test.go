package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/quota"
)

func testSession() *Session {
	return NewSessionWithCredential(fakeCredential{}, "sub-123")
}

func TestRestProbeMatchesUnitAlias(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, `{"value": [
			{"name": {"value": "Cores"}, "currentValue": 3, "limit": 50},
			{"name": {"value": "ServerCount"}, "currentValue": 1, "limit": 10}
		]}`)
	}))
	defer server.Close()

	probe := &restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.DBforPostgreSQL",
		apiVersion: "2024-08-01",
		aliases:    postgresAliases,
	}

	obs, err := probe.CheckQuota(context.Background(), "Microsoft.DBforPostgreSQL/flexibleServers", "westeurope",
		manifest.Capacity{Unit: "vCores", Required: 4})
	require.NoError(t, err)

	assert.Equal(t, "/subscriptions/sub-123/providers/Microsoft.DBforPostgreSQL/locations/westeurope/usages", requestedPath)
	assert.Equal(t, 3.0, obs.CurrentUsage)
	assert.Equal(t, 50.0, obs.Limit)
	assert.True(t, obs.Sufficient())
}

func TestRestProbeExactMatchBeatsAlias(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value": [
			{"name": {"value": "cores"}, "currentValue": 1, "limit": 10},
			{"name": {"value": "vCores"}, "currentValue": 2, "limit": 20}
		]}`)
	}))
	defer server.Close()

	probe := &restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.DBforPostgreSQL",
		apiVersion: "2024-08-01",
		aliases:    postgresAliases,
	}

	obs, err := probe.CheckQuota(context.Background(), "Microsoft.DBforPostgreSQL/flexibleServers", "westeurope",
		manifest.Capacity{Unit: "vCores", Required: 1})
	require.NoError(t, err)

	assert.Equal(t, 20.0, obs.Limit, "the exact counter name wins over the alias")
}

func TestRestProbeUnknownUnitIsInsufficient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value": [{"name": {"value": "SomethingElse"}, "currentValue": 0, "limit": 1000}]}`)
	}))
	defer server.Close()

	probe := &restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.Web",
		apiVersion: "2023-12-01",
		aliases:    webAliases,
	}

	obs, err := probe.CheckQuota(context.Background(), "Microsoft.Web/staticSites", "westeurope",
		manifest.Capacity{Unit: "frobnicators", Required: 1})
	require.NoError(t, err)

	assert.Equal(t, 0.0, obs.Limit)
	assert.Equal(t, 0.0, obs.CurrentUsage)
	assert.False(t, obs.Sufficient(), "an unknown unit must never read as unlimited")
}

func TestRestProbeTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	probe := &restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.Web",
		apiVersion: "2023-12-01",
	}

	_, err := probe.CheckQuota(context.Background(), "Microsoft.Web/staticSites", "westeurope",
		manifest.Capacity{Unit: "apps", Required: 1})
	assert.ErrorIs(t, err, quota.ErrProbeUnavailable)
}

func TestContainerAppsProbeEnvironmentScope(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, `{"value": [{"name": {"value": "ManagedEnvironmentCores"}, "currentValue": 10, "limit": 40}]}`)
	}))
	defer server.Close()

	probe := &containerAppsProbe{restProbe: restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.App",
		apiVersion: "2024-03-01",
		aliases:    containerAppsAliases,
	}}

	obs, err := probe.CheckQuota(context.Background(), "Microsoft.App/containerApps", "westeurope",
		manifest.Capacity{
			Unit:            "Cores",
			Required:        8,
			EnvironmentName: "env-prod",
			ResourceGroup:   "rg-prod",
		})
	require.NoError(t, err)

	assert.Equal(t, "/subscriptions/sub-123/resourceGroups/rg-prod/providers/Microsoft.App/managedEnvironments/env-prod/usages", requestedPath)
	assert.True(t, obs.Sufficient())
}

func TestContainerAppsProbeRegionScopeWithoutHints(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, `{"value": []}`)
	}))
	defer server.Close()

	probe := &containerAppsProbe{restProbe: restProbe{
		session:    testSession(),
		usages:     NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
		namespace:  "Microsoft.App",
		apiVersion: "2024-03-01",
		aliases:    containerAppsAliases,
	}}

	_, err := probe.CheckQuota(context.Background(), "Microsoft.App/containerApps", "northeurope",
		manifest.Capacity{Unit: "Cores", Required: 2})
	require.NoError(t, err)

	assert.Equal(t, "/subscriptions/sub-123/providers/Microsoft.App/locations/northeurope/usages", requestedPath)
}

func TestGenericProbeDerivesNamespace(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		fmt.Fprint(w, `{"value": [{"name": {"value": "registries"}, "currentValue": 1, "limit": 5}]}`)
	}))
	defer server.Close()

	probe := &genericProbe{
		session: testSession(),
		usages:  NewUsagesClientWithEndpoint(fakeCredential{}, server.URL),
	}

	obs, err := probe.CheckQuota(context.Background(), "Microsoft.ContainerRegistry/registries", "westeurope",
		manifest.Capacity{Unit: "registries", Required: 1})
	require.NoError(t, err)

	assert.Equal(t, "/subscriptions/sub-123/providers/Microsoft.ContainerRegistry/locations/westeurope/usages", requestedPath)
	assert.True(t, obs.Sufficient())
}

func TestNewProbeRegistryDispatch(t *testing.T) {
	registry := NewProbeRegistry(testSession(), NewUsagesClient(fakeCredential{}))

	assert.IsType(t, &computeProbe{}, registry.ProbeFor("Microsoft.Compute/virtualMachines"))
	assert.IsType(t, &containerAppsProbe{}, registry.ProbeFor("Microsoft.App/containerApps"))
	assert.IsType(t, &restProbe{}, registry.ProbeFor("Microsoft.Web/staticSites"))
	assert.IsType(t, &genericProbe{}, registry.ProbeFor("Microsoft.KeyVault/vaults"))
}

func TestMatchObservationCarriesRequest(t *testing.T) {
	obs := matchObservation(nil, "Org.Db/flexible", "east", manifest.Capacity{Unit: "vCores", Required: 7}, nil)

	assert.Equal(t, "Org.Db/flexible", obs.ResourceType)
	assert.Equal(t, "east", obs.Region)
	assert.Equal(t, "vCores", obs.Unit)
	assert.Equal(t, 7.0, obs.Required)
}

func TestDeleteAPIVersion(t *testing.T) {
	assert.Equal(t, "2024-03-01", DeleteAPIVersion("Microsoft.App/containerApps"))
	assert.Equal(t, genericDeleteAPIVersion, DeleteAPIVersion("Contoso.Custom/widgets"))
}
