package manifest

// Metadata identifies the manifest.
type Metadata struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Version     string `mapstructure:"version"`
}

// ResourceGroup names the resource group all services are deployed into.
type ResourceGroup struct {
	Name   string `mapstructure:"name"`
	Region string `mapstructure:"region"`
}

// Capacity describes the quota a service requires before it can be placed
// in a region. Absence of Capacity means the service imposes no quota
// constraint and is satisfiable everywhere.
type Capacity struct {
	// Unit is the quota unit label, compared case-insensitively against
	// the provider's own counter names.
	Unit string `mapstructure:"unit"`

	// Required is the amount of the unit the deployment needs.
	Required float64 `mapstructure:"required"`

	// EnvironmentName optionally scopes the check to a hosting environment
	// (used by the Container Apps probe).
	EnvironmentName string `mapstructure:"environmentName"`

	// ResourceGroup optionally scopes the check alongside EnvironmentName.
	ResourceGroup string `mapstructure:"resourceGroup"`
}

// Service is a single resource declaration.
type Service struct {
	Name string `mapstructure:"name"`

	// Type is the namespaced resource type, e.g. "Microsoft.Web/staticSites".
	Type string `mapstructure:"type"`

	// Region overrides the manifest's global region for this service.
	// Empty means the service inherits the global region.
	Region string `mapstructure:"region"`

	SKU string `mapstructure:"sku"`

	Capacity *Capacity `mapstructure:"capacity"`

	// Secrets maps template parameter names to Key Vault secret names.
	Secrets map[string]string `mapstructure:"secrets"`

	Properties map[string]interface{} `mapstructure:"properties"`

	SkipQuotaCheck bool `mapstructure:"skipQuotaCheck"`
}

// Deployment holds deployment settings.
type Deployment struct {
	// Rollback is "none", "lastSuccessful" (default) or "named:<deployment>".
	Rollback string `mapstructure:"rollback"`
}

// Manifest is the root of the infrastructure manifest.
//
// A Manifest is owned exclusively for the duration of one invocation and
// is read-only after load, except for Region, which quota-check persists
// back to the file once a region has been selected.
type Manifest struct {
	Metadata      Metadata          `mapstructure:"metadata"`
	Subscription  string            `mapstructure:"subscription"`
	ResourceGroup ResourceGroup     `mapstructure:"resourceGroup"`
	Region        string            `mapstructure:"region"`
	AllowedRegions []string         `mapstructure:"allowedRegions"`
	Deployment    *Deployment       `mapstructure:"deployment"`
	Tags          map[string]string `mapstructure:"tags"`
	KeyVault      string            `mapstructure:"keyVault"`
	Services      []Service         `mapstructure:"services"`
}

// RollbackPolicy enumerates how failed deployments are rolled back.
type RollbackPolicy int

const (
	// RollbackNone disables rollback on deployment failure.
	RollbackNone RollbackPolicy = iota

	// RollbackLastSuccessful rolls back to the last successful deployment.
	RollbackLastSuccessful

	// RollbackNamed rolls back to an explicitly named deployment.
	RollbackNamed
)

const rollbackNamedPrefix = "named:"

// Rollback returns the configured rollback policy, defaulting to
// RollbackLastSuccessful when unset or unrecognized.
func (m *Manifest) Rollback() RollbackPolicy {
	if m.Deployment == nil {
		return RollbackLastSuccessful
	}
	switch {
	case m.Deployment.Rollback == "none":
		return RollbackNone
	case m.Deployment.Rollback == "lastSuccessful":
		return RollbackLastSuccessful
	case len(m.Deployment.Rollback) > len(rollbackNamedPrefix) &&
		m.Deployment.Rollback[:len(rollbackNamedPrefix)] == rollbackNamedPrefix:
		return RollbackNamed
	default:
		return RollbackLastSuccessful
	}
}

// RollbackTarget returns the named deployment for RollbackNamed, or "".
func (m *Manifest) RollbackTarget() string {
	if m.Rollback() != RollbackNamed {
		return ""
	}
	return m.Deployment.Rollback[len(rollbackNamedPrefix):]
}

// EffectiveRegion returns the region a service will be placed in:
// its own override if set, else the manifest's global region.
func (m *Manifest) EffectiveRegion(s *Service) string {
	if s.Region != "" {
		return s.Region
	}
	return m.Region
}
