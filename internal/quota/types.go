// Package quota resolves which regions can host a manifest's services
// given current capacity usage and limits.
package quota

import (
	"time"

	"github.com/azprov/azprov/internal/manifest"
)

// Observation is the outcome of one capacity check for one
// (resource type, region, unit) triple. Immutable once produced.
type Observation struct {
	ResourceType string  `json:"resource_type"`
	Region       string  `json:"region"`
	Unit         string  `json:"unit"`
	CurrentUsage float64 `json:"current_usage"`
	Limit        float64 `json:"limit"`
	Required     float64 `json:"required"`
}

// Available returns the headroom left under the limit.
func (o Observation) Available() float64 {
	return o.Limit - o.CurrentUsage
}

// Sufficient reports whether the available headroom covers the requirement.
func (o Observation) Sufficient() bool {
	return o.Available() >= o.Required
}

// ProbeFailure records a capacity check that could not be performed.
// The affected region keeps its expected-check count, so a failure can
// never make a region viable by omission.
type ProbeFailure struct {
	Service      string `json:"service"`
	ResourceType string `json:"resource_type"`
	Region       string `json:"region"`
	Error        string `json:"error"`
}

// ConfigIssue records a service whose pinned region is not in the
// candidate set. Such a service contributes no observations.
type ConfigIssue struct {
	Service string `json:"service"`
	Region  string `json:"region"`
	Reason  string `json:"reason"`
}

// Analysis is the result of one resolver run. It is created fresh per
// run and not mutated afterwards, except to record the final selection.
type Analysis struct {
	// Regions maps each candidate region to the observations gathered
	// for it. Regions with no capacity-bearing services map to an
	// empty list.
	Regions map[string][]Observation `json:"regions"`

	// ViableRegions lists regions where every expected check completed
	// and reported sufficient capacity, in lexicographic order.
	ViableRegions []string `json:"viable_regions"`

	// ExpectedChecks is the number of capacity checks each region had
	// to pass to be viable.
	ExpectedChecks map[string]int `json:"expected_checks"`

	Failures     []ProbeFailure `json:"probe_failures,omitempty"`
	ConfigIssues []ConfigIssue  `json:"config_issues,omitempty"`

	SelectedRegion string `json:"selected_region,omitempty"`

	// Incomplete is set when the run was cancelled before all checks
	// finished. Regions missing checks are already non-viable; the flag
	// tells readers the analysis must not be trusted as exhaustive.
	Incomplete bool `json:"incomplete,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Viable reports whether region is in the viable set.
func (a *Analysis) Viable(region string) bool {
	for _, r := range a.ViableRegions {
		if r == region {
			return true
		}
	}
	return false
}

// CheckedServices returns the services that participate in quota
// resolution: those with a capacity requirement and without the
// skip flag. Everything else is satisfiable everywhere.
func CheckedServices(m *manifest.Manifest) []*manifest.Service {
	var checked []*manifest.Service
	for i := range m.Services {
		s := &m.Services[i]
		if s.Capacity != nil && !s.SkipQuotaCheck {
			checked = append(checked, s)
		}
	}
	return checked
}
