package bicep

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azprov/azprov/internal/manifest"
)

func stackManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Metadata:      manifest.Metadata{Name: "acme", Version: "1.0"},
		Subscription:  "sub-123",
		ResourceGroup: manifest.ResourceGroup{Name: "rg-acme"},
		Region:        "westeurope",
		KeyVault:      "kv-acme",
		Tags:          map[string]string{"env": "prod"},
		Services: []manifest.Service{
			{Name: "api", Type: "Microsoft.App/containerApps",
				Properties: map[string]interface{}{"image": "acme.azurecr.io/api:v3"}},
			{Name: "db", Type: "Microsoft.DBforPostgreSQL/flexibleServers", SKU: "Standard_D2ds_v4",
				Secrets: map[string]string{"administratorPassword": "acme-db-password"}},
			{Name: "env", Type: "Microsoft.App/managedEnvironments"},
			{Name: "logs", Type: "Microsoft.OperationalInsights/workspaces"},
			{Name: "web", Type: "Microsoft.Web/staticSites", SKU: "Standard"},
		},
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	result, err := g.Generate(context.Background(), stackManifest())
	require.NoError(t, err)
	assert.Empty(t, result.Orphans)

	for _, rel := range []string{
		"main.bicep",
		"main.parameters.json",
		filepath.Join("modules", "api.bicep"),
		filepath.Join("modules", "db.bicep"),
		filepath.Join("modules", "env.bicep"),
		filepath.Join("modules", "logs.bicep"),
		filepath.Join("modules", "web.bicep"),
	} {
		assert.FileExists(t, filepath.Join(dir, rel))
		assert.Contains(t, result.Files, rel)
	}

	main, err := os.ReadFile(filepath.Join(dir, "main.bicep"))
	require.NoError(t, err)
	text := string(main)

	assert.Contains(t, text, "targetScope = 'subscription'")
	assert.Contains(t, text, "name: 'rg-acme'")
	assert.Contains(t, text, "env: 'prod'")

	// Deployment order: telemetry first, applications last.
	logsAt := indexOf(t, text, "module logs")
	dbAt := indexOf(t, text, "module db")
	envAt := indexOf(t, text, "module env")
	apiAt := indexOf(t, text, "module api")
	assert.Less(t, logsAt, dbAt)
	assert.Less(t, dbAt, envAt)
	assert.Less(t, envAt, apiAt)

	// The environment consumes the workspace's outputs; the app
	// consumes the environment's. The output references are the only
	// sequencing mechanism between modules.
	assert.Contains(t, text, "logAnalyticsCustomerId: logs.outputs.customerId")
	assert.Contains(t, text, "environmentId: env.outputs.environmentId")
	assert.NotContains(t, text, "dependsOn")

	// Secrets surface as secure parameters.
	assert.Contains(t, text, "param db_administratorPassword string")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "expected to find %q", needle)
	return idx
}

func TestGenerateParametersUseKeyVaultReferences(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	_, err := g.Generate(context.Background(), stackManifest())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "main.parameters.json"))
	require.NoError(t, err)

	var doc struct {
		Parameters map[string]struct {
			Value     *string `json:"value"`
			Reference *struct {
				KeyVault struct {
					ID string `json:"id"`
				} `json:"keyVault"`
				SecretName string `json:"secretName"`
			} `json:"reference"`
		} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	location, ok := doc.Parameters["location"]
	require.True(t, ok)
	require.NotNil(t, location.Value)
	assert.Equal(t, "westeurope", *location.Value)

	secret, ok := doc.Parameters["db_administratorPassword"]
	require.True(t, ok)
	require.NotNil(t, secret.Reference)
	assert.Equal(t, "acme-db-password", secret.Reference.SecretName)
	assert.Contains(t, secret.Reference.KeyVault.ID, "/vaults/kv-acme")
}

func TestGenerateRequiresRegion(t *testing.T) {
	m := stackManifest()
	m.Region = ""

	_, err := NewGenerator(t.TempDir()).Generate(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no region")
}

func TestGenerateReportsOrphans(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules"), 0o755))
	stale := filepath.Join(dir, "modules", "retired.bicep")
	require.NoError(t, os.WriteFile(stale, []byte("// old"), 0o644))

	g := NewGenerator(dir)
	result, err := g.Generate(context.Background(), stackManifest())
	require.NoError(t, err)

	assert.Equal(t, []string{"retired.bicep"}, result.Orphans)
	assert.FileExists(t, stale, "orphans are only reported unless pruning is requested")
}

func TestGeneratePrunesOrphans(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules"), 0o755))
	stale := filepath.Join(dir, "modules", "retired.bicep")
	require.NoError(t, os.WriteFile(stale, []byte("// old"), 0o644))

	g := NewGenerator(dir)
	g.Prune = true
	result, err := g.Generate(context.Background(), stackManifest())
	require.NoError(t, err)

	assert.Equal(t, []string{"retired.bicep"}, result.Orphans)
	assert.NoFileExists(t, stale)
}

func TestBuilderForFallsBackToGeneric(t *testing.T) {
	body, err := BuilderFor("Contoso.Custom/widgets")(manifest.Service{
		Name: "widget",
		Type: "Contoso.Custom/widgets",
		Properties: map[string]interface{}{
			"size": "large",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Contoso.Custom/widgets@")
	assert.Contains(t, body, `"size":"large"`)
}

func TestBuildContainerAppDefaults(t *testing.T) {
	body, err := buildContainerApp(manifest.Service{Name: "api", Type: "Microsoft.App/containerApps"})
	require.NoError(t, err)

	assert.Contains(t, body, "cpu: json('0.5')")
	assert.Contains(t, body, "memory: '1Gi'")
}

func TestSymbolFor(t *testing.T) {
	assert.Equal(t, "my_api", symbolFor("my-api"))
	assert.Equal(t, "svc_1db", symbolFor("1db"))
}
