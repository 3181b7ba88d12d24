package plan

import (
	"sort"
	"strings"

	"github.com/azprov/azprov/internal/manifest"
)

// Order returns services in deployment order: ascending tier, preserving
// manifest declaration order within a tier. The input is not modified.
func Order(services []manifest.Service) []manifest.Service {
	ordered := append([]manifest.Service(nil), services...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return DeployTier(ordered[i].Type) < DeployTier(ordered[j].Type)
	})
	return ordered
}

// TeardownBatches groups discovered resource types into deletion
// batches following the teardown sequence. Types within one batch have
// no ordering constraint between them and may be deleted concurrently.
// Types not named in the sequence land in the wildcard batch. Empty
// batches are omitted.
func TeardownBatches(resourceTypes []string) [][]string {
	remaining := make(map[string][]string)
	var order []string
	for _, rt := range resourceTypes {
		key := strings.ToLower(rt)
		if _, seen := remaining[key]; !seen {
			order = append(order, key)
		}
		remaining[key] = append(remaining[key], rt)
	}

	var batches [][]string
	matched := make(map[string]bool)
	for _, step := range teardownSequence {
		if step == TeardownWildcard {
			continue
		}
		if types, ok := remaining[step]; ok {
			batches = append(batches, types)
			matched[step] = true
		}
	}

	var wildcard []string
	for _, key := range order {
		if !matched[key] {
			wildcard = append(wildcard, remaining[key]...)
		}
	}
	if len(wildcard) > 0 {
		batches = append(batches, wildcard)
	}

	return batches
}
