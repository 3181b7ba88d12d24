package commands

import (
	"github.com/spf13/cobra"

	"github.com/azprov/azprov/cmd/azprov/handlers"
)

// Deploy returns the deploy command.
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Apply the generated templates",
		Long: `Deploy runs a subscription-scope deployment of the generated
templates through the Azure CLI.

Before deploying it re-checks that the selected region is still viable;
quota can drift between quota-check and deploy. Use --force to skip the
gate, --what-if to preview changes without applying them.

Example:
  azprov deploy -m manifest.yaml -o infra --what-if`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file (required)")
	cmd.Flags().StringVarP(&opts.TemplateDir, "out-dir", "o", "infra", "Directory holding the generated templates")
	cmd.Flags().BoolVar(&opts.WhatIf, "what-if", false, "Preview changes without applying them")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Skip the pre-deployment quota gate")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
