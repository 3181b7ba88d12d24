package quota

import (
	"context"
	"strings"

	"github.com/azprov/azprov/internal/manifest"
)

// CapacityProbe checks whether one region has enough of one quota unit
// for one resource type.
//
// Implementations must return an Observation with usage=0, limit=0 when
// the requested unit is unknown to the provider, so that "unit not
// found" reads as insufficient rather than unlimited. Transport and
// auth failures are returned as errors wrapping ErrProbeUnavailable.
type CapacityProbe interface {
	CheckQuota(ctx context.Context, resourceType, region string, capacity manifest.Capacity) (Observation, error)
}

// Catalog enumerates the regions the subscription can see.
type Catalog interface {
	ListRegions(ctx context.Context) ([]string, error)
}

// Registry dispatches capacity checks to per-provider probes by the
// namespace prefix of the resource type (the part before the "/").
// Types with no registered probe fall back to a generic one.
type Registry struct {
	probes   map[string]CapacityProbe
	fallback CapacityProbe
}

// NewRegistry creates a registry with the given fallback probe.
func NewRegistry(fallback CapacityProbe) *Registry {
	return &Registry{
		probes:   make(map[string]CapacityProbe),
		fallback: fallback,
	}
}

// Register installs a probe for a provider namespace,
// e.g. "Microsoft.Compute".
func (r *Registry) Register(namespace string, probe CapacityProbe) {
	r.probes[strings.ToLower(namespace)] = probe
}

// ProbeFor returns the probe responsible for a resource type.
func (r *Registry) ProbeFor(resourceType string) CapacityProbe {
	namespace := resourceType
	if idx := strings.Index(resourceType, "/"); idx >= 0 {
		namespace = resourceType[:idx]
	}
	if probe, ok := r.probes[strings.ToLower(namespace)]; ok {
		return probe
	}
	return r.fallback
}
