package quota

import (
	"fmt"
	"sort"
)

// AutoSelect deterministically picks the lexicographically first viable
// region and records it on the analysis. The value gets persisted into
// the manifest, so it must be reproducible across runs.
func AutoSelect(a *Analysis) (string, error) {
	if len(a.ViableRegions) == 0 {
		return "", ErrNoViableRegion
	}

	viable := append([]string(nil), a.ViableRegions...)
	sort.Strings(viable)
	a.SelectedRegion = viable[0]
	return a.SelectedRegion, nil
}

// Select validates an externally chosen region against the viable set
// and records it on the analysis.
func Select(a *Analysis, region string) error {
	if len(a.ViableRegions) == 0 {
		return ErrNoViableRegion
	}
	if !a.Viable(region) {
		return fmt.Errorf("%w: %s", ErrSelectionOutOfRange, region)
	}
	a.SelectedRegion = region
	return nil
}
