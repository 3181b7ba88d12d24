package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/azprov/azprov/internal/quota"
)

var (
	quotaColorGreen = lipgloss.Color("#22c55e")
	quotaColorRed   = lipgloss.Color("#ef4444")
	quotaColorBlue  = lipgloss.Color("#3b82f6")
	quotaColorDim   = lipgloss.Color("#6b7280")
	quotaColorWhite = lipgloss.Color("#f9fafb")
)

var (
	quotaTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(quotaColorWhite)

	quotaSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(quotaColorBlue)

	quotaDimStyle = lipgloss.NewStyle().
			Foreground(quotaColorDim)

	quotaGreenStyle = lipgloss.NewStyle().
			Foreground(quotaColorGreen)

	quotaRedStyle = lipgloss.NewStyle().
			Foreground(quotaColorRed)
)

// renderAnalysis produces a lipgloss-styled view of a quota analysis.
func renderAnalysis(name string, analysis *quota.Analysis) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(quotaTitleStyle.Render(fmt.Sprintf("  azprov quota: %s", name)))
	b.WriteString("\n")
	b.WriteString(quotaDimStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n")

	regions := make([]string, 0, len(analysis.Regions))
	for region := range analysis.Regions {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	for _, region := range regions {
		expected := analysis.ExpectedChecks[region]
		observations := analysis.Regions[region]

		b.WriteString("\n")
		switch {
		case expected == 0:
			b.WriteString(quotaDimStyle.Render(fmt.Sprintf("  - %s (no services target this region)", region)))
		case analysis.Viable(region):
			b.WriteString(quotaGreenStyle.Render(fmt.Sprintf("  ✓ %s", region)))
		default:
			b.WriteString(quotaRedStyle.Render(fmt.Sprintf("  ✗ %s", region)))
			if len(observations) < expected {
				b.WriteString(quotaDimStyle.Render(fmt.Sprintf("  (%d of %d checks completed)", len(observations), expected)))
			}
		}
		b.WriteString("\n")

		for _, obs := range observations {
			line := fmt.Sprintf("      %-45s %s: %.0f used of %.0f, need %.0f",
				obs.ResourceType, obs.Unit, obs.CurrentUsage, obs.Limit, obs.Required)
			if obs.Sufficient() {
				b.WriteString(quotaDimStyle.Render(line))
			} else {
				b.WriteString(quotaRedStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if len(analysis.ConfigIssues) > 0 {
		b.WriteString("\n")
		b.WriteString(quotaSectionStyle.Render("  Configuration issues"))
		b.WriteString("\n")
		for _, issue := range analysis.ConfigIssues {
			b.WriteString(quotaRedStyle.Render(fmt.Sprintf("    %s: %s", issue.Service, issue.Reason)))
			b.WriteString("\n")
		}
	}

	if len(analysis.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(quotaSectionStyle.Render("  Probe failures"))
		b.WriteString("\n")
		for _, failure := range analysis.Failures {
			b.WriteString(quotaRedStyle.Render(fmt.Sprintf("    %s in %s: %s", failure.Service, failure.Region, failure.Error)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if len(analysis.ViableRegions) > 0 {
		b.WriteString(quotaGreenStyle.Render(fmt.Sprintf("  Viable regions: %s", strings.Join(analysis.ViableRegions, ", "))))
	} else {
		b.WriteString(quotaRedStyle.Render("  No viable regions"))
	}
	b.WriteString("\n")

	if analysis.Incomplete {
		b.WriteString(quotaRedStyle.Render("  Analysis incomplete: the run was cancelled before all checks finished"))
		b.WriteString("\n")
	}

	return b.String()
}
