package manifest

import (
	"fmt"
	"strings"
)

// Validate checks the manifest for structural errors. It does not contact
// any cloud API; region names and quota units are verified later against
// live data.
func (m *Manifest) Validate() error {
	if m.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}

	if m.ResourceGroup.Name == "" {
		return fmt.Errorf("resourceGroup.name is required")
	}

	if m.Region == "" && len(m.AllowedRegions) == 0 {
		return fmt.Errorf("either region or allowedRegions must be set")
	}

	if len(m.Services) == 0 {
		return fmt.Errorf("at least one service is required")
	}

	seen := make(map[string]bool, len(m.Services))
	for i := range m.Services {
		s := &m.Services[i]
		if err := s.validate(); err != nil {
			return fmt.Errorf("service %d (%s): %w", i, s.Name, err)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate service name: %s", s.Name)
		}
		seen[s.Name] = true
	}

	if m.Deployment != nil {
		if err := validateRollback(m.Deployment.Rollback); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Type == "" {
		return fmt.Errorf("type is required")
	}
	// Resource types are namespaced, e.g. Microsoft.Web/staticSites.
	if !strings.Contains(s.Type, "/") {
		return fmt.Errorf("type %q must be of the form Namespace/ResourceKind", s.Type)
	}

	if s.Capacity != nil {
		if s.Capacity.Unit == "" {
			return fmt.Errorf("capacity.unit is required when capacity is set")
		}
		if s.Capacity.Required < 0 {
			return fmt.Errorf("capacity.required must not be negative, got %v", s.Capacity.Required)
		}
		if (s.Capacity.EnvironmentName == "") != (s.Capacity.ResourceGroup == "") {
			return fmt.Errorf("capacity.environmentName and capacity.resourceGroup must be set together")
		}
	}

	return nil
}

func validateRollback(policy string) error {
	switch {
	case policy == "", policy == "none", policy == "lastSuccessful":
		return nil
	case strings.HasPrefix(policy, rollbackNamedPrefix):
		if policy == rollbackNamedPrefix {
			return fmt.Errorf("deployment.rollback %q names no deployment", policy)
		}
		return nil
	default:
		return fmt.Errorf("deployment.rollback must be none, lastSuccessful or named:<deployment>, got %q", policy)
	}
}
