package commands

import (
	"github.com/spf13/cobra"

	"github.com/azprov/azprov/cmd/azprov/handlers"
)

// QuotaCheck returns the quota-check command.
//
// It resolves which allowed regions can host every capacity-bearing
// service in the manifest, selects one, and writes it back into the
// manifest file.
func QuotaCheck() *cobra.Command {
	var opts handlers.QuotaCheckOptions

	cmd := &cobra.Command{
		Use:   "quota-check",
		Short: "Resolve viable regions and select one",
		Long: `Quota-check probes current usage and limits for every service that
declares a capacity requirement, across every allowed region, and
reports which regions can host the full manifest.

A region is viable only when every required check completed and showed
sufficient headroom. The selected region is persisted into the manifest
so generate and deploy can use it.

Example:
  azprov quota-check -m manifest.yaml --auto-select --report quota.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.QuotaCheck(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ManifestPath, "manifest", "m", "", "Path to the manifest file (required)")
	cmd.Flags().BoolVar(&opts.AutoSelect, "auto-select", false, "Pick the first viable region without prompting")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "", "Write the full analysis as JSON to this path")
	cmd.Flags().BoolVar(&opts.NoPersist, "no-persist", false, "Do not write the selected region back to the manifest")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
