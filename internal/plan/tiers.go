// Package plan orders resources for deployment and teardown.
//
// Both orders are static data tables over resource-type strings, kept
// separate from the sorting code so they can be extended without
// touching the algorithm.
package plan

import "strings"

// UnknownTier is assigned to resource types absent from the table.
// They deploy last.
const UnknownTier = 99

// deployTiers maps resource types to deployment priority. Lower tiers
// deploy first: telemetry backends before networking, networking before
// data stores, data stores before hosting environments, environments
// before the applications that run on them.
var deployTiers = map[string]int{
	"microsoft.operationalinsights/workspaces":    0,
	"microsoft.network/virtualnetworks":           1,
	"microsoft.network/privatednszones":           1,
	"microsoft.dbforpostgresql/flexibleservers":   2,
	"microsoft.containerregistry/registries":      2,
	"microsoft.keyvault/vaults":                   2,
	"microsoft.app/managedenvironments":           3,
	"microsoft.app/containerapps":                 4,
	"microsoft.web/staticsites":                   4,
}

// TeardownWildcard matches every resource type not named earlier in the
// teardown sequence.
const TeardownWildcard = "*"

// teardownSequence deletes leaf resources before the things they depend
// on: data tier, then apps, then their hosting environments, then
// registries and secret stores, then telemetry, then static frontends,
// then everything else. The owning resource group is deleted separately,
// strictly after all member resources are gone.
var teardownSequence = []string{
	"microsoft.dbforpostgresql/flexibleservers",
	"microsoft.app/containerapps",
	"microsoft.app/managedenvironments",
	"microsoft.containerregistry/registries",
	"microsoft.keyvault/vaults",
	"microsoft.operationalinsights/workspaces",
	"microsoft.web/staticsites",
	TeardownWildcard,
}

// DeployTier returns the deployment tier for a resource type.
func DeployTier(resourceType string) int {
	if tier, ok := deployTiers[strings.ToLower(resourceType)]; ok {
		return tier
	}
	return UnknownTier
}

// TeardownSequence returns the resource-type deletion order, ending with
// the wildcard bucket.
func TeardownSequence() []string {
	return append([]string(nil), teardownSequence...)
}
