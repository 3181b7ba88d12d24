// Package bicep turns an ordered service list into a deployable set of
// Bicep templates: one subscription-scope entrypoint plus one module
// per service, with secrets wired through Key Vault references.
package bicep

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/azprov/azprov/internal/manifest"
)

// Builder renders the module body for one service.
type Builder func(s manifest.Service) (string, error)

type buildContext struct {
	Service        manifest.Service
	SKU            string
	Image          string
	CPU            string
	Memory         string
	APIVersion     string
	PropertiesJSON string
}

// builders keys lowercased resource types. Types without a dedicated
// builder render through the generic one.
var builders = map[string]Builder{
	"microsoft.web/staticsites":                 buildStaticSite,
	"microsoft.dbforpostgresql/flexibleservers": buildPostgres,
	"microsoft.app/managedenvironments":         buildManagedEnvironment,
	"microsoft.app/containerapps":               buildContainerApp,
	"microsoft.operationalinsights/workspaces":  buildLogAnalytics,
}

// BuilderFor returns the builder responsible for a resource type.
func BuilderFor(resourceType string) Builder {
	if b, ok := builders[strings.ToLower(resourceType)]; ok {
		return b
	}
	return buildGeneric
}

func render(name, tmpl string, ctx interface{}) (string, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, ctx); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return sb.String(), nil
}

func stringProperty(s manifest.Service, key, fallback string) string {
	if v, ok := s.Properties[key]; ok {
		if str, ok := v.(string); ok && str != "" {
			return str
		}
	}
	return fallback
}

func buildStaticSite(s manifest.Service) (string, error) {
	ctx := buildContext{Service: s, SKU: s.SKU}
	if ctx.SKU == "" {
		ctx.SKU = "Free"
	}
	return render("staticSite", staticSiteTemplate, ctx)
}

func buildPostgres(s manifest.Service) (string, error) {
	ctx := buildContext{Service: s, SKU: s.SKU}
	if ctx.SKU == "" {
		ctx.SKU = "Standard_D2ds_v4"
	}
	return render("postgres", postgresTemplate, ctx)
}

func buildManagedEnvironment(s manifest.Service) (string, error) {
	return render("managedEnvironment", managedEnvironmentTemplate, buildContext{Service: s})
}

func buildContainerApp(s manifest.Service) (string, error) {
	ctx := buildContext{
		Service: s,
		Image:   stringProperty(s, "image", "mcr.microsoft.com/k8se/quickstart:latest"),
		CPU:     stringProperty(s, "cpu", "0.5"),
		Memory:  stringProperty(s, "memory", "1Gi"),
	}
	return render("containerApp", containerAppTemplate, ctx)
}

func buildLogAnalytics(s manifest.Service) (string, error) {
	return render("logAnalytics", logAnalyticsTemplate, buildContext{Service: s})
}

func buildGeneric(s manifest.Service) (string, error) {
	properties := s.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	data, err := json.Marshal(properties)
	if err != nil {
		return "", fmt.Errorf("failed to serialize properties for %s: %w", s.Name, err)
	}

	ctx := buildContext{
		Service:        s,
		SKU:            s.SKU,
		APIVersion:     "2021-04-01",
		PropertiesJSON: string(data),
	}
	return render("generic", genericTemplate, ctx)
}
