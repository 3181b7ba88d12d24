package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/platform/azure"
	"github.com/azprov/azprov/internal/quota"
)

const testManifest = `
metadata:
  name: acme
  version: "1.0"
subscription: sub-123
resourceGroup:
  name: rg-acme
region: eastus
allowedRegions:
  - eastus
  - westeurope
services:
  - name: db
    type: Microsoft.DBforPostgreSQL/flexibleServers
    capacity:
      unit: vCores
      required: 4
`

func writeTestManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))
	return path
}

// fakeResolver returns a canned analysis.
type fakeResolver struct {
	analysis *quota.Analysis
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, _ *manifest.Manifest) (*quota.Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

func viableAnalysis(regions ...string) *quota.Analysis {
	a := &quota.Analysis{
		Regions:        map[string][]quota.Observation{},
		ExpectedChecks: map[string]int{},
		ViableRegions:  regions,
	}
	for _, r := range regions {
		a.Regions[r] = []quota.Observation{{
			ResourceType: "Microsoft.DBforPostgreSQL/flexibleServers",
			Region:       r,
			Unit:         "vCores",
			CurrentUsage: 2,
			Limit:        20,
			Required:     4,
		}}
		a.ExpectedChecks[r] = 1
	}
	return a
}

func stubSession(t *testing.T) {
	t.Helper()
	original := newSession
	newSession = func(subscriptionID string) (*azure.Session, error) {
		return azure.NewSessionWithCredential(nil, subscriptionID), nil
	}
	t.Cleanup(func() { newSession = original })
}

func stubResolver(t *testing.T, fake *fakeResolver) {
	t.Helper()
	original := newResolver
	newResolver = func(*azure.Session) regionResolver { return fake }
	t.Cleanup(func() { newResolver = original })
}

func stubPromptRegion(t *testing.T, choice string, err error) *int {
	t.Helper()
	calls := new(int)
	original := promptRegion
	promptRegion = func([]string) (string, error) {
		*calls++
		return choice, err
	}
	t.Cleanup(func() { promptRegion = original })
	return calls
}

func stubConfirm(t *testing.T, answer bool) *int {
	t.Helper()
	calls := new(int)
	original := confirm
	confirm = func(string) (bool, error) {
		*calls++
		return answer, nil
	}
	t.Cleanup(func() { confirm = original })
	return calls
}
