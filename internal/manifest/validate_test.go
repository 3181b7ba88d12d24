package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validManifest() *Manifest {
	return &Manifest{
		Metadata:      Metadata{Name: "test", Version: "1.0"},
		ResourceGroup: ResourceGroup{Name: "rg-test"},
		Region:        "westeurope",
		Services: []Service{
			{Name: "web", Type: "Microsoft.Web/staticSites"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr string
	}{
		{
			name:   "valid manifest",
			mutate: func(*Manifest) {},
		},
		{
			name:    "missing metadata name",
			mutate:  func(m *Manifest) { m.Metadata.Name = "" },
			wantErr: "metadata.name",
		},
		{
			name:    "missing resource group",
			mutate:  func(m *Manifest) { m.ResourceGroup.Name = "" },
			wantErr: "resourceGroup.name",
		},
		{
			name: "no region and no allowed regions",
			mutate: func(m *Manifest) {
				m.Region = ""
				m.AllowedRegions = nil
			},
			wantErr: "region",
		},
		{
			name: "allowed regions without global region is fine",
			mutate: func(m *Manifest) {
				m.Region = ""
				m.AllowedRegions = []string{"westeurope"}
			},
		},
		{
			name:    "no services",
			mutate:  func(m *Manifest) { m.Services = nil },
			wantErr: "at least one service",
		},
		{
			name: "duplicate service names",
			mutate: func(m *Manifest) {
				m.Services = append(m.Services, Service{Name: "web", Type: "Microsoft.App/containerApps"})
			},
			wantErr: "duplicate service name",
		},
		{
			name: "service missing type",
			mutate: func(m *Manifest) {
				m.Services[0].Type = ""
			},
			wantErr: "type is required",
		},
		{
			name: "unnamespaced type",
			mutate: func(m *Manifest) {
				m.Services[0].Type = "staticSites"
			},
			wantErr: "Namespace/ResourceKind",
		},
		{
			name: "capacity without unit",
			mutate: func(m *Manifest) {
				m.Services[0].Capacity = &Capacity{Required: 2}
			},
			wantErr: "capacity.unit",
		},
		{
			name: "capacity with zero required is fine",
			mutate: func(m *Manifest) {
				m.Services[0].Capacity = &Capacity{Unit: "vCores"}
			},
		},
		{
			name: "capacity with negative required",
			mutate: func(m *Manifest) {
				m.Services[0].Capacity = &Capacity{Unit: "vCores", Required: -1}
			},
			wantErr: "must not be negative",
		},
		{
			name: "environment scope needs both hints",
			mutate: func(m *Manifest) {
				m.Services[0].Capacity = &Capacity{Unit: "Cores", Required: 2, EnvironmentName: "env-prod"}
			},
			wantErr: "must be set together",
		},
		{
			name: "unknown rollback policy",
			mutate: func(m *Manifest) {
				m.Deployment = &Deployment{Rollback: "sometimes"}
			},
			wantErr: "deployment.rollback",
		},
		{
			name: "named rollback without target",
			mutate: func(m *Manifest) {
				m.Deployment = &Deployment{Rollback: "named:"}
			},
			wantErr: "names no deployment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
