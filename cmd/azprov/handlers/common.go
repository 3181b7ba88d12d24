// Package handlers implements the business logic behind the CLI
// commands. Collaborators are created through package-level factory
// variables so tests can substitute fakes.
package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/platform/azure"
	"github.com/azprov/azprov/internal/quota"
)

// regionResolver matches quota.Resolver.
type regionResolver interface {
	Resolve(ctx context.Context, m *manifest.Manifest) (*quota.Analysis, error)
}

// Factory function variables - can be replaced in tests.
var (
	// newSession builds the Azure session for a run.
	newSession = func(subscriptionID string) (*azure.Session, error) {
		return azure.NewSession(subscriptionID)
	}

	// newResolver wires the catalog and probe registry behind the
	// resolver.
	newResolver = func(session *azure.Session) regionResolver {
		usages := azure.NewUsagesClient(session.Credential)
		return quota.NewResolver(azure.NewCatalog(session), azure.NewProbeRegistry(session, usages))
	}

	// promptRegion asks the user to pick one of the viable regions.
	promptRegion = func(viable []string) (string, error) {
		var choice string
		options := make([]huh.Option[string], 0, len(viable))
		for _, region := range viable {
			options = append(options, huh.NewOption(region, region))
		}
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a deployment region").
				Options(options...).
				Value(&choice),
		))
		if err := form.Run(); err != nil {
			return "", fmt.Errorf("region selection aborted: %w", err)
		}
		return choice, nil
	}

	// confirm asks a yes/no question before destructive operations.
	confirm = func(title string) (bool, error) {
		var ok bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title(title).Value(&ok),
		))
		if err := form.Run(); err != nil {
			return false, err
		}
		return ok, nil
	}
)
