package bicep

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/plan"
	"github.com/azprov/azprov/internal/util/async"
)

// Generator writes the template set for a manifest into an output
// directory: main.bicep, main.parameters.json and modules/<service>.bicep
// per service, in deployment order.
type Generator struct {
	OutDir string

	// Prune removes stale module files left over from services that
	// were removed from the manifest. When false they are only reported.
	Prune bool
}

// Result reports what a generation run produced.
type Result struct {
	// Files are the written paths, relative to OutDir.
	Files []string

	// Orphans are module files with no matching service. Deleted when
	// Prune is set, otherwise left in place.
	Orphans []string
}

// NewGenerator creates a generator writing into outDir.
func NewGenerator(outDir string) *Generator {
	return &Generator{OutDir: outDir}
}

type mainContext struct {
	ResourceGroup string
	Tags          map[string]string
	SecureParams  []string
	Modules       []moduleRef
}

type moduleRef struct {
	Symbol string
	File   string
	Name   string
	Params []moduleParam
}

type moduleParam struct {
	Name  string
	Value string
}

// Generate renders and writes all templates. The manifest must carry a
// selected region.
func (g *Generator) Generate(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	if m.Region == "" {
		return nil, fmt.Errorf("manifest has no region; run quota-check first")
	}

	ordered := plan.Order(m.Services)

	logsSymbol := symbolForType(ordered, "microsoft.operationalinsights/workspaces")
	envSymbol := symbolForType(ordered, "microsoft.app/managedenvironments")

	main := mainContext{
		ResourceGroup: m.ResourceGroup.Name,
		Tags:          m.Tags,
	}
	secretRefs := map[string]string{}

	type moduleFile struct {
		relPath string
		content string
	}
	files := make([]moduleFile, 0, len(ordered)+2)

	for _, s := range ordered {
		body, err := BuilderFor(s.Type)(s)
		if err != nil {
			return nil, err
		}

		ref := moduleRef{
			Symbol: symbolFor(s.Name),
			File:   s.Name + ".bicep",
			Name:   s.Name,
		}
		ref.Params = g.moduleParams(s, ref.Symbol, logsSymbol, envSymbol, &main.SecureParams, secretRefs)
		main.Modules = append(main.Modules, ref)

		files = append(files, moduleFile{
			relPath: filepath.Join("modules", ref.File),
			content: body,
		})
	}

	mainBody, err := render("main", mainTemplate, main)
	if err != nil {
		return nil, err
	}
	files = append(files, moduleFile{relPath: "main.bicep", content: mainBody})

	params, err := g.renderParameters(m, main.SecureParams, secretRefs)
	if err != nil {
		return nil, err
	}
	files = append(files, moduleFile{relPath: "main.parameters.json", content: params})

	if err := os.MkdirAll(filepath.Join(g.OutDir, "modules"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var tasks []async.Task
	for _, f := range files {
		f := f
		tasks = append(tasks, async.Task{
			Name: f.relPath,
			Func: func(context.Context) error {
				path := filepath.Join(g.OutDir, f.relPath)
				if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				return nil
			},
		})
	}
	if err := async.RunParallel(ctx, tasks); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, f := range files {
		result.Files = append(result.Files, f.relPath)
	}

	orphans, err := g.findOrphans(ordered)
	if err != nil {
		return nil, err
	}
	result.Orphans = orphans
	if g.Prune {
		for _, orphan := range orphans {
			if err := os.Remove(filepath.Join(g.OutDir, "modules", orphan)); err != nil {
				return nil, fmt.Errorf("failed to prune %s: %w", orphan, err)
			}
		}
	}

	return result, nil
}

// moduleParams wires a module's inputs: secret-backed secure parameters
// and outputs of sibling modules it depends on. Output references are
// what sequence the modules; no explicit dependsOn is emitted.
func (g *Generator) moduleParams(s manifest.Service, symbol, logsSymbol, envSymbol string, secureParams *[]string, secretRefs map[string]string) []moduleParam {
	var params []moduleParam

	secretKeys := make([]string, 0, len(s.Secrets))
	for k := range s.Secrets {
		secretKeys = append(secretKeys, k)
	}
	sort.Strings(secretKeys)
	for _, k := range secretKeys {
		paramName := symbol + "_" + k
		*secureParams = append(*secureParams, paramName)
		secretRefs[paramName] = s.Secrets[k]
		params = append(params, moduleParam{Name: k, Value: paramName})
	}

	switch strings.ToLower(s.Type) {
	case "microsoft.dbforpostgresql/flexibleservers":
		if _, ok := s.Secrets["administratorPassword"]; !ok {
			paramName := symbol + "_administratorPassword"
			*secureParams = append(*secureParams, paramName)
			secretRefs[paramName] = s.Name + "-admin-password"
			params = append(params, moduleParam{Name: "administratorPassword", Value: paramName})
		}
	case "microsoft.app/managedenvironments":
		if logsSymbol != "" {
			params = append(params,
				moduleParam{Name: "logAnalyticsCustomerId", Value: logsSymbol + ".outputs.customerId"},
				moduleParam{Name: "logAnalyticsSharedKey", Value: logsSymbol + ".outputs.primarySharedKey"},
			)
		} else {
			params = append(params,
				moduleParam{Name: "logAnalyticsCustomerId", Value: "''"},
				moduleParam{Name: "logAnalyticsSharedKey", Value: "''"},
			)
		}
	case "microsoft.app/containerapps":
		if envSymbol != "" {
			params = append(params, moduleParam{Name: "environmentId", Value: envSymbol + ".outputs.environmentId"})
		} else {
			params = append(params, moduleParam{Name: "environmentId", Value: "''"})
		}
	}

	return params
}

func (g *Generator) renderParameters(m *manifest.Manifest, secureParams []string, secretRefs map[string]string) (string, error) {
	parameters := map[string]interface{}{
		"location": map[string]interface{}{"value": m.Region},
	}

	for _, paramName := range secureParams {
		secretName := secretRefs[paramName]
		if m.KeyVault == "" || secretName == "" {
			parameters[paramName] = map[string]interface{}{"value": ""}
			continue
		}
		vaultID := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.KeyVault/vaults/%s",
			m.Subscription, m.ResourceGroup.Name, m.KeyVault)
		parameters[paramName] = map[string]interface{}{
			"reference": map[string]interface{}{
				"keyVault":   map[string]interface{}{"id": vaultID},
				"secretName": secretName,
			},
		}
	}

	doc := map[string]interface{}{
		"$schema":        "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#",
		"contentVersion": "1.0.0.0",
		"parameters":     parameters,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize parameters: %w", err)
	}
	return string(data) + "\n", nil
}

// findOrphans lists module files that no current service accounts for.
func (g *Generator) findOrphans(services []manifest.Service) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(g.OutDir, "modules"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan modules directory: %w", err)
	}

	expected := make(map[string]bool, len(services))
	for _, s := range services {
		expected[s.Name+".bicep"] = true
	}

	var orphans []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".bicep") {
			continue
		}
		if !expected[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// symbolFor turns a service name into a Bicep identifier.
func symbolFor(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	symbol := sb.String()
	if symbol == "" || unicode.IsDigit(rune(symbol[0])) {
		symbol = "svc_" + symbol
	}
	return symbol
}

func symbolForType(services []manifest.Service, resourceType string) string {
	for _, s := range services {
		if strings.EqualFold(s.Type, resourceType) {
			return symbolFor(s.Name)
		}
	}
	return ""
}
