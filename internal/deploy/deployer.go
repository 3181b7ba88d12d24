// Package deploy applies generated templates through the Azure CLI and
// tears deployed stacks down through the Resource Manager API.
package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/azprov/azprov/internal/manifest"
)

// runCommand executes an external command and captures its output.
// A variable so tests can substitute a fake CLI.
var runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s failed: %w: %s",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// timestamp returns the suffix for deployment names. A variable so
// tests get stable names.
var timestamp = func() string {
	return time.Now().UTC().Format("20060102150405")
}

// Deployer runs subscription-scope deployments of a generated template
// directory.
type Deployer struct {
	TemplateDir string

	// WhatIf previews changes without applying them.
	WhatIf bool
}

// NewDeployer creates a deployer for templates in templateDir.
func NewDeployer(templateDir string) *Deployer {
	return &Deployer{TemplateDir: templateDir}
}

// Deploy applies the templates and returns the deployment name and the
// CLI output. The manifest's rollback policy maps onto ARM's
// rollback-on-error behavior.
func (d *Deployer) Deploy(ctx context.Context, m *manifest.Manifest) (string, string, error) {
	if m.Region == "" {
		return "", "", fmt.Errorf("manifest has no region; run quota-check first")
	}

	name := fmt.Sprintf("%s-%s", m.Metadata.Name, timestamp())

	verb := "create"
	if d.WhatIf {
		verb = "what-if"
	}

	args := []string{
		"deployment", "sub", verb,
		"--name", name,
		"--location", m.Region,
		"--template-file", filepath.Join(d.TemplateDir, "main.bicep"),
		"--parameters", "@" + filepath.Join(d.TemplateDir, "main.parameters.json"),
	}

	if !d.WhatIf {
		switch m.Rollback() {
		case manifest.RollbackLastSuccessful:
			args = append(args, "--rollback-on-error")
		case manifest.RollbackNamed:
			args = append(args, "--rollback-on-error", m.RollbackTarget())
		case manifest.RollbackNone:
		}
	}

	output, err := runCommand(ctx, "az", args...)
	if err != nil {
		return name, output, fmt.Errorf("deployment %s failed: %w", name, err)
	}

	return name, output, nil
}
