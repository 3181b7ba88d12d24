// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the azprov CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "azprov",
		Short: "Quota-aware Azure provisioning from a declarative manifest",
	}

	cmd.AddCommand(QuotaCheck())
	cmd.AddCommand(Generate())
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
