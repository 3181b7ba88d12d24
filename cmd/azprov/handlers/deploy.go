package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/azprov/azprov/internal/deploy"
	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/util/prerequisites"
)

// stackDeployer matches deploy.Deployer.
type stackDeployer interface {
	Deploy(ctx context.Context, m *manifest.Manifest) (string, string, error)
}

// newDeployer creates the deployer - can be replaced in tests.
var newDeployer = func(templateDir string, whatIf bool) stackDeployer {
	d := deploy.NewDeployer(templateDir)
	d.WhatIf = whatIf
	return d
}

// checkPrerequisites verifies required client tools - can be replaced in tests.
var checkPrerequisites = func() error {
	return prerequisites.CheckDefault().Error()
}

// DeployOptions carries the deploy command flags.
type DeployOptions struct {
	ManifestPath string
	TemplateDir  string

	// WhatIf previews the deployment without applying it.
	WhatIf bool

	// Force skips the pre-deployment region viability gate.
	Force bool

	// Yes skips the confirmation prompt.
	Yes bool
}

// Deploy applies the generated templates after re-validating that the
// selected region is still viable.
func Deploy(ctx context.Context, opts DeployOptions) error {
	if err := checkPrerequisites(); err != nil {
		return err
	}

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}
	if m.Region == "" {
		return fmt.Errorf("manifest has no region; run quota-check first")
	}

	if opts.Force {
		log.Printf("Skipping quota gate (--force)")
	} else if err := verifyRegionStillViable(ctx, m); err != nil {
		return err
	}

	if !opts.WhatIf && !opts.Yes {
		ok, err := confirm(fmt.Sprintf("Deploy %s to %s?", m.Metadata.Name, m.Region))
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("Deployment cancelled")
			return nil
		}
	}

	name, output, err := newDeployer(opts.TemplateDir, opts.WhatIf).Deploy(ctx, m)
	if err != nil {
		return err
	}

	if opts.WhatIf {
		fmt.Print(output)
		return nil
	}

	log.Printf("Deployment %s succeeded", name)
	return nil
}

// verifyRegionStillViable re-runs quota resolution and checks that the
// persisted region is still in the viable set. Quota drifts between the
// check and the deploy; this catches the stale case before ARM does.
func verifyRegionStillViable(ctx context.Context, m *manifest.Manifest) error {
	session, err := newSession(m.Subscription)
	if err != nil {
		return err
	}

	analysis, err := newResolver(session).Resolve(ctx, m)
	if err != nil {
		return err
	}
	if analysis.Incomplete {
		return fmt.Errorf("quota gate was interrupted; re-run or use --force")
	}
	if !analysis.Viable(m.Region) {
		return fmt.Errorf("region %s is no longer viable for %s; re-run quota-check or use --force",
			m.Region, m.Metadata.Name)
	}

	log.Printf("Region %s verified viable", m.Region)
	return nil
}
