package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azprov/azprov/internal/manifest"
)

func namedProbe(name string) CapacityProbe {
	return probeFunc(func(_ context.Context, _, _ string, _ manifest.Capacity) (Observation, error) {
		return Observation{Unit: name}, nil
	})
}

func TestRegistryDispatchesByNamespace(t *testing.T) {
	registry := NewRegistry(namedProbe("fallback"))
	registry.Register("Microsoft.Compute", namedProbe("compute"))
	registry.Register("Microsoft.Web", namedProbe("web"))

	tests := []struct {
		resourceType string
		want         string
	}{
		{"Microsoft.Compute/virtualMachines", "compute"},
		{"Microsoft.Web/staticSites", "web"},
		{"Microsoft.KeyVault/vaults", "fallback"},
		{"noSeparator", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			probe := registry.ProbeFor(tt.resourceType)
			obs, err := probe.CheckQuota(context.Background(), tt.resourceType, "east", manifest.Capacity{})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, obs.Unit)
		})
	}
}

func TestRegistryNamespaceIsCaseInsensitive(t *testing.T) {
	registry := NewRegistry(namedProbe("fallback"))
	registry.Register("microsoft.compute", namedProbe("compute"))

	probe := registry.ProbeFor("Microsoft.Compute/virtualMachines")
	obs, err := probe.CheckQuota(context.Background(), "Microsoft.Compute/virtualMachines", "east", manifest.Capacity{})
	assert.NoError(t, err)
	assert.Equal(t, "compute", obs.Unit)
}

func TestObservationDerivedValues(t *testing.T) {
	obs := Observation{CurrentUsage: 50, Limit: 200, Required: 100}
	assert.Equal(t, 150.0, obs.Available())
	assert.True(t, obs.Sufficient())

	// Unit not found reads as insufficient, never unlimited.
	missing := Observation{Required: 1}
	assert.Equal(t, 0.0, missing.Available())
	assert.False(t, missing.Sufficient())

	// Zero required is satisfied even at the limit.
	tight := Observation{CurrentUsage: 10, Limit: 10, Required: 0}
	assert.True(t, tight.Sufficient())
}
