package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.err != nil {
		return m.renderError()
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.renderHome()
	case SceneResults:
		content = m.renderResults()
	case SceneDetail:
		content = m.renderDetail()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar, status bar, and main container
func (m Model) renderApp(content string) string {
	titleBar := m.renderTitleBar()
	statusBar := m.renderStatusBar()

	contentHeight := m.height - 4
	contentContainer := lipgloss.NewStyle().
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleBar,
		contentContainer,
		statusBar,
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("Compensation Benchmarking")
	breadcrumb := SubtitleStyle.Render(m.currentScene.String())
	return lipgloss.JoinVertical(lipgloss.Left, title, breadcrumb)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("h", "home"),
		formatShortcut("o", "optimize"),
		formatShortcut("r", "results"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	statusText := strings.Join(shortcuts, "  ")

	if m.runInProgress {
		statusText += "  " + m.spinner.View() + " " + m.runStatus
	}

	return StatusBarStyle.Width(m.width).Render(statusText)
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderLoading() string {
	return m.spinner.View() + " " + m.loadingMessage
}

func (m Model) renderError() string {
	return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
}

func (m Model) renderHome() string {
	var sb strings.Builder
	sb.WriteString("\n")
	if m.config == nil {
		sb.WriteString("  No scenario loaded.\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("  Scenario: %s\n\n", m.configPath))
	sb.WriteString(fmt.Sprintf("  %s %s\n",
		MetricLabelStyle.Render("Providers:"),
		MetricValueStyle.Render(fmt.Sprintf("%d", len(m.config.Providers)))))
	sb.WriteString(fmt.Sprintf("  %s %s\n",
		MetricLabelStyle.Render("Market rows:"),
		MetricValueStyle.Render(fmt.Sprintf("%d", len(m.config.Market)))))
	sb.WriteString(fmt.Sprintf("  %s %s\n\n",
		MetricLabelStyle.Render("Objective:"),
		MetricValueStyle.Render(string(m.config.Optimizer.Objective))))

	if m.runInProgress {
		sb.WriteString("  " + m.spinner.View() + " " + m.runStatus + "\n")
	} else {
		sb.WriteString("  Press " + StatusKeyStyle.Render("o") + " to run the optimizer.\n")
	}
	return sb.String()
}

func (m Model) renderResults() string {
	if m.result == nil {
		return "\n  No results yet. Press o to run the optimizer.\n"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s %s    %s %s\n\n",
		MetricLabelStyle.Render("Total spend impact:"),
		renderSignedDollars(m.result.Summary.TotalSpendImpact),
		MetricLabelStyle.Render("Incentive dollars:"),
		MetricValueStyle.Render("$"+m.result.Summary.TotalIncentiveDollars.StringFixed(0))))

	for i := range m.result.Specialties {
		sr := &m.result.Specialties[i]
		line := fmt.Sprintf("%-24s  $%s -> $%s (%s%%)  %s",
			sr.Specialty,
			sr.CurrentRate.StringFixed(2),
			sr.RecommendedRate.StringFixed(2),
			sr.RateChangePct.StringFixed(1),
			sr.Action)
		if !sr.Flags.Clean() {
			line += "  " + FlagStyle.Render("[flags]")
		}
		if i == m.selectedSpecialty {
			sb.WriteString("  " + SelectedItemStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString("  " + UnselectedItemStyle.Render("  "+line) + "\n")
		}
	}

	sb.WriteString("\n  Press " + StatusKeyStyle.Render("enter") + " for specialty detail.\n")
	return sb.String()
}

func (m Model) renderDetail() string {
	if m.result == nil || m.selectedSpecialty >= len(m.result.Specialties) {
		return "\n  No specialty selected.\n"
	}
	sr := &m.result.Specialties[m.selectedSpecialty]

	var sb strings.Builder
	sb.WriteString("\n  " + MetricValueStyle.Render(sr.Explanation.Headline) + "\n\n")

	ratePct := "n/a"
	if sr.RatePercentilesKnown {
		ratePct = sr.RecommendedRatePercentile.StringFixed(1)
	}
	rows := []struct{ label, value string }{
		{"Status", string(sr.Status)},
		{"Current rate", "$" + sr.CurrentRate.StringFixed(2)},
		{"Recommended rate", "$" + sr.RecommendedRate.StringFixed(2)},
		{"Rate percentile", ratePct},
		{"Mean pay percentile", sr.MeanModeledPayPercentile.StringFixed(1)},
		{"Mean productivity percentile", sr.MeanProductivityPercentile.StringFixed(1)},
		{"Gap", sr.Gap.StringFixed(1)},
		{"Providers included", fmt.Sprintf("%d", sr.IncludedCount)},
		{"Providers excluded", fmt.Sprintf("%d", sr.ExcludedCount)},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  %-30s %s\n",
			MetricLabelStyle.Render(r.label), MetricValueStyle.Render(r.value)))
	}

	if flags := flagNames(sr.Flags); len(flags) > 0 {
		sb.WriteString("\n  " + FlagStyle.Render("Flags: "+strings.Join(flags, ", ")) + "\n")
	}

	for _, b := range sr.Explanation.Bullets {
		sb.WriteString("\n  - " + b)
	}
	for _, n := range sr.Explanation.NextSteps {
		sb.WriteString("\n  > " + n)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderHelp() string {
	return `
  Keyboard shortcuts

    o        run the optimizer
    r        results list
    up/down  select a specialty
    enter    specialty detail
    esc      back
    h        home
    q        quit
`
}

func renderSignedDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return MetricNegativeStyle.Render("-$" + d.Abs().StringFixed(0))
	}
	return MetricPositiveStyle.Render("+$" + d.Abs().StringFixed(0))
}

func flagNames(f domain.GovernanceFlags) []string {
	var out []string
	if f.UnderpayRisk {
		out = append(out, "underpay risk")
	}
	if f.RateBelow25th {
		out = append(out, "rate below 25th")
	}
	if f.FMVCheckSuggested {
		out = append(out, "FMV check suggested")
	}
	return out
}
