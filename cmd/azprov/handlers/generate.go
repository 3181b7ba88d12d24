package handlers

import (
	"context"
	"log"

	"github.com/azprov/azprov/internal/bicep"
	"github.com/azprov/azprov/internal/manifest"
)

// templateGenerator matches bicep.Generator.
type templateGenerator interface {
	Generate(ctx context.Context, m *manifest.Manifest) (*bicep.Result, error)
}

// newGenerator creates the template generator - can be replaced in tests.
var newGenerator = func(outDir string, prune bool) templateGenerator {
	g := bicep.NewGenerator(outDir)
	g.Prune = prune
	return g
}

// GenerateOptions carries the generate command flags.
type GenerateOptions struct {
	ManifestPath string
	OutDir       string

	// Prune deletes module files for services no longer in the manifest.
	Prune bool
}

// Generate renders the Bicep template set for the manifest.
func Generate(ctx context.Context, opts GenerateOptions) error {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	result, err := newGenerator(opts.OutDir, opts.Prune).Generate(ctx, m)
	if err != nil {
		return err
	}

	log.Printf("Generated %d files in %s", len(result.Files), opts.OutDir)
	for _, orphan := range result.Orphans {
		if opts.Prune {
			log.Printf("Pruned stale module %s", orphan)
		} else {
			log.Printf("Warning: stale module %s no longer matches any service (use --prune to remove)", orphan)
		}
	}

	return nil
}
