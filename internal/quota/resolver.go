package quota

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/azprov/azprov/internal/manifest"
	"github.com/azprov/azprov/internal/util/async"
)

// DefaultConcurrency bounds the number of in-flight probe calls.
const DefaultConcurrency = 8

// Resolver computes the set of regions that can host a manifest.
type Resolver struct {
	catalog Catalog
	probes  *Registry

	// Concurrency bounds parallel probe calls. Zero means
	// DefaultConcurrency.
	Concurrency int
}

// NewResolver creates a resolver over the given catalog and probe registry.
func NewResolver(catalog Catalog, probes *Registry) *Resolver {
	return &Resolver{catalog: catalog, probes: probes}
}

// Resolve checks capacity for every (service, candidate region) pair and
// returns the analysis. A region is viable only when every check expected
// of it was actually recorded and every recorded check is sufficient, so
// probe failures and cancellation can only shrink the viable set.
//
// The returned error is non-nil only for fatal conditions (catalog
// failure). An empty viable set is reported in the analysis, not as an
// error; callers decide how to surface it.
func (r *Resolver) Resolve(ctx context.Context, m *manifest.Manifest) (*Analysis, error) {
	regions, err := r.candidateRegions(ctx, m)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Regions:        make(map[string][]Observation, len(regions)),
		ExpectedChecks: make(map[string]int, len(regions)),
		Timestamp:      time.Now().UTC(),
	}
	for _, region := range regions {
		analysis.Regions[region] = []Observation{}
	}

	checked := CheckedServices(m)
	if len(checked) == 0 {
		analysis.ViableRegions = append([]string(nil), regions...)
		return analysis, nil
	}

	// Expected check count per region: global services count everywhere,
	// pinned services only in their own region.
	for _, s := range checked {
		effective := m.EffectiveRegion(s)
		if effective == "" {
			for _, region := range regions {
				analysis.ExpectedChecks[region]++
			}
			continue
		}
		if lo.Contains(regions, effective) {
			analysis.ExpectedChecks[effective]++
		}
	}

	var mu sync.Mutex
	regionMu := make(map[string]*sync.Mutex, len(regions))
	for _, region := range regions {
		regionMu[region] = &sync.Mutex{}
	}

	var tasks []async.Task
	for _, s := range checked {
		s := s
		targets := regions
		if effective := m.EffectiveRegion(s); effective != "" {
			if !lo.Contains(regions, effective) {
				// Pinned outside the candidate set: a configuration
				// condition, not a probe result. No observations.
				mu.Lock()
				analysis.ConfigIssues = append(analysis.ConfigIssues, ConfigIssue{
					Service: s.Name,
					Region:  effective,
					Reason:  fmt.Sprintf("pinned region %s is not among the candidate regions", effective),
				})
				mu.Unlock()
				continue
			}
			targets = []string{effective}
		}

		for _, region := range targets {
			region := region
			tasks = append(tasks, async.Task{
				Name: fmt.Sprintf("%s/%s", s.Name, region),
				Func: func(ctx context.Context) error {
					probe := r.probes.ProbeFor(s.Type)
					obs, err := probe.CheckQuota(ctx, s.Type, region, *s.Capacity)
					if err != nil {
						mu.Lock()
						analysis.Failures = append(analysis.Failures, ProbeFailure{
							Service:      s.Name,
							ResourceType: s.Type,
							Region:       region,
							Error:        err.Error(),
						})
						mu.Unlock()
						return nil
					}
					regionMu[region].Lock()
					analysis.Regions[region] = append(analysis.Regions[region], obs)
					regionMu[region].Unlock()
					return nil
				},
			})
		}
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if err := async.RunLimited(ctx, tasks, concurrency); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		analysis.Incomplete = true
	}

	for _, region := range regions {
		expected := analysis.ExpectedChecks[region]
		if expected == 0 {
			// No service needs this region. Irrelevant, not trivially
			// viable.
			continue
		}
		observations := analysis.Regions[region]
		if len(observations) != expected {
			continue
		}
		if lo.EveryBy(observations, Observation.Sufficient) {
			analysis.ViableRegions = append(analysis.ViableRegions, region)
		}
	}
	sort.Strings(analysis.ViableRegions)

	return analysis, nil
}

// candidateRegions intersects the manifest allow-list with the regions
// the subscription can see. Without an allow-list every visible region
// is a candidate. The result is deduplicated and sorted.
func (r *Resolver) candidateRegions(ctx context.Context, m *manifest.Manifest) ([]string, error) {
	visible, err := r.catalog.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	candidates := lo.Uniq(visible)
	if len(m.AllowedRegions) > 0 {
		allowed := lo.Uniq(m.AllowedRegions)
		candidates = lo.Filter(allowed, func(region string, _ int) bool {
			return lo.Contains(visible, region)
		})
	}
	sort.Strings(candidates)
	return candidates, nil
}
