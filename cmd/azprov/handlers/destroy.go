package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/azprov/azprov/internal/deploy"
	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/platform/azure"
)

// stackDestroyer matches deploy.Destroyer.
type stackDestroyer interface {
	Destroy(ctx context.Context, resourceGroup string) (*deploy.DestroyResult, error)
}

// newDestroyer creates the destroyer - can be replaced in tests.
var newDestroyer = func(session *azure.Session) stackDestroyer {
	return deploy.NewDestroyer(azure.NewResources(session))
}

// DestroyOptions carries the destroy command flags.
type DestroyOptions struct {
	ManifestPath string

	// Yes skips the confirmation prompt.
	Yes bool
}

// Destroy deletes the manifest's resource group and everything in it,
// leaf resources first.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	if !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Delete resource group %s and ALL resources in it?", m.ResourceGroup.Name))
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("Destroy cancelled")
			return nil
		}
	}

	session, err := newSession(m.Subscription)
	if err != nil {
		return err
	}

	log.Printf("Destroying resource group %s", m.ResourceGroup.Name)
	result, destroyErr := newDestroyer(session).Destroy(ctx, m.ResourceGroup.Name)
	if result != nil {
		for _, id := range result.Deleted {
			log.Printf("Deleted %s", id)
		}
		for _, failure := range result.Failed {
			log.Printf("Warning: could not delete %s: %s", failure.ID, failure.Error)
		}
		if result.GroupError != "" {
			log.Printf("Resource group deletion failed: %s", result.GroupError)
		}
	}
	if destroyErr != nil {
		return destroyErr
	}

	log.Printf("Resource group %s destroyed", m.ResourceGroup.Name)
	return nil
}
