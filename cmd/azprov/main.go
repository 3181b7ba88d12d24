// Package main is the entry point for the azprov CLI.
//
// azprov provisions Azure infrastructure from a declarative manifest.
// It resolves which regions can actually host the requested resources
// given current quota usage, generates dependency-ordered Bicep
// templates, deploys them through the Azure CLI, and tears stacks down
// in reverse dependency order.
//
// Commands: quota-check, generate, deploy, destroy.
//
// For detailed usage information, run:
//
//	azprov --help
package main

import (
	"fmt"
	"os"

	"github.com/azprov/azprov/cmd/azprov/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
