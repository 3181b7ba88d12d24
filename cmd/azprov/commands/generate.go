package commands

import (
	"github.com/spf13/cobra"

	"github.com/azprov/azprov/cmd/azprov/handlers"
)

// Generate returns the generate command.
func Generate() *cobra.Command {
	var opts handlers.GenerateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render Bicep templates for the manifest",
		Long: `Generate renders a subscription-scope main.bicep, one module per
service in deployment order, and main.parameters.json with Key Vault
references for declared secrets.

The manifest must already carry a region; run quota-check first.

Example:
  azprov generate -m manifest.yaml -o infra --prune`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Generate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file (required)")
	cmd.Flags().StringVarP(&opts.OutDir, "out-dir", "o", "infra", "Output directory for generated templates")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Delete module files for services removed from the manifest")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
