package commands

import (
	"github.com/spf13/cobra"

	"github.com/azprov/azprov/cmd/azprov/handlers"
)

// Destroy returns the destroy command.
//
// Resources are deleted leaf-first: databases, then container apps,
// then their environments, registries, vaults, telemetry, frontends,
// everything else, and the resource group strictly last.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the resource group and everything in it",
		Long: `Destroy deletes all resources in the manifest's resource group in
reverse dependency order, then the group itself.

Vaults with purge protection can block the final group deletion; the
failure is reported rather than swallowed.

Example:
  azprov destroy -m manifest.yaml --yes

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file (required)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
