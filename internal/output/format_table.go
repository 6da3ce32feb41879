// Package output renders run, sweep, and target results as console tables,
// CSV, or JSON.
package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// TableFormatter formats results as a console table
type TableFormatter struct{}

// FormatRun generates a formatted table for an optimization run
func (tf *TableFormatter) FormatRun(result *domain.RunResult) string {
	var sb strings.Builder

	sb.WriteString("COMPENSATION RATE OPTIMIZATION\n")
	sb.WriteString(strings.Repeat("=", 100) + "\n")
	sb.WriteString(fmt.Sprintf("Providers: %d total, %d included, %d excluded\n",
		result.Summary.ProviderCount, result.Summary.IncludedCount, result.Summary.ExcludedCount))
	sb.WriteString(fmt.Sprintf("Specialties: %d\n", result.Summary.SpecialtyCount))
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s %*s\n",
		nameWidth, "Specialty",
		numWidth, "Current",
		numWidth, "Recommended",
		numWidth, "Change %",
		numWidth, "Pay Pctile",
		numWidth, "Prod Pctile",
		numWidth, "Spend"))
	sb.WriteString(strings.Repeat("-", 100) + "\n")

	for i := range result.Specialties {
		sb.WriteString(tf.formatSpecialtyRow(&result.Specialties[i], nameWidth, numWidth))
	}
	sb.WriteString(strings.Repeat("=", 100) + "\n")

	sb.WriteString("\nSUMMARY\n")
	sb.WriteString(strings.Repeat("-", 100) + "\n")
	sb.WriteString(fmt.Sprintf("Total spend impact:      %s$%s\n",
		tf.deltaSymbol(result.Summary.TotalSpendImpact), tf.formatDecimal(result.Summary.TotalSpendImpact.Abs())))
	sb.WriteString(fmt.Sprintf("Total incentive dollars: $%s\n",
		tf.formatDecimal(result.Summary.TotalIncentiveDollars)))

	if b := result.Summary.Budget; b != nil {
		sb.WriteString(fmt.Sprintf("Budget cap:              $%s (%s, delta %s$%s)\n",
			tf.formatDecimal(b.CapDollars), b.Status,
			tf.deltaSymbol(b.DeltaDollars), tf.formatDecimal(b.DeltaDollars.Abs())))
	}

	if len(result.Summary.KeyMessages) > 0 {
		sb.WriteString("\nKEY MESSAGES\n")
		sb.WriteString(strings.Repeat("-", 100) + "\n")
		for _, msg := range result.Summary.KeyMessages {
			sb.WriteString(fmt.Sprintf("* %s\n", msg))
		}
	}

	if len(result.Summary.TopExclusionReasons) > 0 {
		sb.WriteString("\nEXCLUSIONS\n")
		sb.WriteString(strings.Repeat("-", 100) + "\n")
		for _, rc := range result.Summary.TopExclusionReasons {
			sb.WriteString(fmt.Sprintf("%-50s %d\n", rc.Reason.Describe(), rc.Count))
		}
	}

	sb.WriteString("\nNARRATIVE\n")
	sb.WriteString(strings.Repeat("-", 100) + "\n")
	for i := range result.Specialties {
		sr := &result.Specialties[i]
		sb.WriteString(fmt.Sprintf("\n%s\n", sr.Explanation.Headline))
		for _, b := range sr.Explanation.Bullets {
			sb.WriteString(fmt.Sprintf("  - %s\n", b))
		}
		for _, n := range sr.Explanation.NextSteps {
			sb.WriteString(fmt.Sprintf("  > %s\n", n))
		}
	}

	return sb.String()
}

// formatSpecialtyRow formats a single specialty row
func (tf *TableFormatter) formatSpecialtyRow(sr *domain.SpecialtyResult, nameWidth, numWidth int) string {
	name := sr.Specialty
	if sr.Status == domain.SearchInfeasible {
		name += " (!)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, "$"+sr.CurrentRate.StringFixed(2),
		numWidth, "$"+sr.RecommendedRate.StringFixed(2),
		numWidth, sr.RateChangePct.StringFixed(1)+"%",
		numWidth, sr.MeanModeledPayPercentile.StringFixed(1),
		numWidth, sr.MeanProductivityPercentile.StringFixed(1),
		numWidth, tf.deltaSymbol(sr.SpendImpact)+"$"+tf.formatDecimal(sr.SpendImpact.Abs()))
}

// FormatSweep generates a formatted table for a sensitivity sweep
func (tf *TableFormatter) FormatSweep(result *domain.SweepResult) string {
	var sb strings.Builder

	sb.WriteString("RATE SENSITIVITY SWEEP\n")
	sb.WriteString(strings.Repeat("=", 90) + "\n")

	numWidth := 14
	for _, name := range result.Specialties {
		sb.WriteString(fmt.Sprintf("\n%s\n", name))
		sb.WriteString(fmt.Sprintf("%*s %*s %*s %*s %*s %*s\n",
			numWidth, "Percentile",
			numWidth, "Rate",
			numWidth, "Pay Pctile",
			numWidth, "Prod Pctile",
			numWidth, "Gap",
			numWidth, "Spend"))
		sb.WriteString(strings.Repeat("-", 90) + "\n")
		for _, row := range result.BySpecialty[name] {
			sb.WriteString(fmt.Sprintf("%*s %*s %*s %*s %*s %*s\n",
				numWidth, row.Percentile.StringFixed(0)+"th",
				numWidth, "$"+row.Rate.StringFixed(2),
				numWidth, row.MeanModeledPayPercentile.StringFixed(1),
				numWidth, row.MeanProductivityPercentile.StringFixed(1),
				numWidth, row.Gap.StringFixed(1),
				numWidth, tf.deltaSymbol(row.SpendImpact)+"$"+tf.formatDecimal(row.SpendImpact.Abs())))
		}
	}

	return sb.String()
}

// FormatTargets generates a formatted table for a productivity target run
func (tf *TableFormatter) FormatTargets(result *domain.TargetResult) string {
	var sb strings.Builder

	sb.WriteString("PRODUCTIVITY TARGETS\n")
	sb.WriteString(strings.Repeat("=", 90) + "\n")
	sb.WriteString(fmt.Sprintf("Total planning incentive: $%s\n",
		tf.formatDecimal(result.TotalPlanningIncentive)))

	nameWidth := 24
	numWidth := 14
	for i := range result.Specialties {
		sr := &result.Specialties[i]
		aligned := "aligned"
		if !sr.Aligned {
			aligned = "misaligned"
		}
		sb.WriteString(fmt.Sprintf("\n%s (target %s wRVUs per 1.0 FTE, rate $%s, %s)\n",
			sr.Specialty, sr.GroupTarget.StringFixed(0), sr.PlanningRate.StringFixed(2), aligned))
		sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
			nameWidth, "Provider",
			numWidth, "Target",
			numWidth, "Actual",
			numWidth, "Ratio",
			numWidth, "Band",
			numWidth, "Incentive"))
		sb.WriteString(strings.Repeat("-", 90) + "\n")
		for _, pr := range sr.Providers {
			sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s\n",
				nameWidth, tf.truncate(pr.ProviderName, nameWidth),
				numWidth, pr.Target.StringFixed(0),
				numWidth, pr.Actual.StringFixed(0),
				numWidth, pr.Ratio.StringFixed(2),
				numWidth, string(pr.Band),
				numWidth, "$"+tf.formatDecimal(pr.PlanningIncentive)))
		}
	}

	return sb.String()
}

// formatDecimal formats a dollar amount for display
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(10000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns a + or - prefix for signed dollar deltas
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
