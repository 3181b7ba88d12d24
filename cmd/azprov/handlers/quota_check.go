package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/briandowns/spinner"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/quota"
)

// QuotaCheckOptions carries the quota-check command flags.
type QuotaCheckOptions struct {
	ManifestPath string

	// AutoSelect picks the first viable region instead of prompting.
	AutoSelect bool

	// ReportPath, when set, persists the full analysis as JSON.
	ReportPath string

	// NoPersist leaves the manifest file untouched after selection.
	NoPersist bool
}

// QuotaCheck resolves region viability for the manifest, selects a
// region and persists it back into the manifest file.
func QuotaCheck(ctx context.Context, opts QuotaCheckOptions) error {
	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	log.Printf("Checking quota for %s (%d services)", m.Metadata.Name, len(m.Services))

	session, err := newSession(m.Subscription)
	if err != nil {
		return err
	}
	resolver := newResolver(session)

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithSuffix(" probing regional quotas..."))
	sp.Start()
	analysis, err := resolver.Resolve(ctx, m)
	sp.Stop()
	if err != nil {
		if errors.Is(err, quota.ErrCatalogUnavailable) {
			return fmt.Errorf("region discovery failed, cannot judge viability: %w", err)
		}
		return err
	}

	if opts.ReportPath != "" {
		if err := quota.SaveReport(analysis, opts.ReportPath); err != nil {
			return err
		}
		log.Printf("Analysis written to %s", opts.ReportPath)
	}

	fmt.Print(renderAnalysis(m.Metadata.Name, analysis))

	if analysis.Incomplete {
		return fmt.Errorf("quota check was interrupted before all probes finished; no region selected")
	}
	if len(analysis.ViableRegions) == 0 {
		return fmt.Errorf("%w: quota is insufficient in every candidate region", quota.ErrNoViableRegion)
	}

	var region string
	if opts.AutoSelect {
		region, err = quota.AutoSelect(analysis)
		if err != nil {
			return err
		}
	} else {
		region, err = promptRegion(analysis.ViableRegions)
		if err != nil {
			return err
		}
		if err := quota.Select(analysis, region); err != nil {
			return err
		}
	}

	log.Printf("Selected region: %s", region)

	if opts.NoPersist {
		return nil
	}
	if err := manifest.UpdateRegion(opts.ManifestPath, region); err != nil {
		return err
	}
	log.Printf("Region %s written to %s", region, opts.ManifestPath)

	return nil
}
