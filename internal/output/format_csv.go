package output

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/compbench/compbench/internal/domain"
)

// CSVFormatter formats results as CSV
type CSVFormatter struct{}

// FormatRun generates CSV output for an optimization run, one row per
// specialty.
func (cf *CSVFormatter) FormatRun(result *domain.RunResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Specialty",
		"Status",
		"Action",
		"Current Rate",
		"Recommended Rate",
		"Rate Change %",
		"Current Rate Percentile",
		"Recommended Rate Percentile",
		"Mean Modeled Pay Percentile",
		"Mean Productivity Percentile",
		"Gap",
		"Spend Impact",
		"Incentive Dollars",
		"Included",
		"Excluded",
		"Flags",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i := range result.Specialties {
		if err := writer.Write(cf.formatSpecialtyRow(&result.Specialties[i])); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatSpecialtyRow formats a specialty result as a CSV row. Rate
// percentiles without a usable benchmark stay empty rather than reading as
// zero.
func (cf *CSVFormatter) formatSpecialtyRow(sr *domain.SpecialtyResult) []string {
	curPct, recPct := "", ""
	if sr.RatePercentilesKnown {
		curPct = sr.CurrentRatePercentile.StringFixed(1)
		recPct = sr.RecommendedRatePercentile.StringFixed(1)
	}
	return []string{
		sr.Specialty,
		string(sr.Status),
		string(sr.Action),
		sr.CurrentRate.StringFixed(2),
		sr.RecommendedRate.StringFixed(2),
		sr.RateChangePct.StringFixed(2),
		curPct,
		recPct,
		sr.MeanModeledPayPercentile.StringFixed(1),
		sr.MeanProductivityPercentile.StringFixed(1),
		sr.Gap.StringFixed(1),
		sr.SpendImpact.StringFixed(0),
		sr.IncentiveDollars.StringFixed(0),
		formatInt(sr.IncludedCount),
		formatInt(sr.ExcludedCount),
		flagList(sr.Flags),
	}
}

// FormatSweep generates CSV output for a sensitivity sweep, one row per
// specialty and percentile.
func (cf *CSVFormatter) FormatSweep(result *domain.SweepResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Specialty",
		"Percentile",
		"Rate",
		"Mean Modeled Pay Percentile",
		"Mean Productivity Percentile",
		"Gap",
		"Incentive Dollars",
		"Spend Impact",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, name := range result.Specialties {
		for _, row := range result.BySpecialty[name] {
			record := []string{
				name,
				row.Percentile.StringFixed(0),
				row.Rate.StringFixed(2),
				row.MeanModeledPayPercentile.StringFixed(1),
				row.MeanProductivityPercentile.StringFixed(1),
				row.Gap.StringFixed(1),
				row.IncentiveDollars.StringFixed(0),
				row.SpendImpact.StringFixed(0),
			}
			if err := writer.Write(record); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// FormatTargets generates CSV output for a productivity target run, one row
// per provider.
func (cf *CSVFormatter) FormatTargets(result *domain.TargetResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Specialty",
		"Provider ID",
		"Provider",
		"Group Target",
		"Provider Target",
		"Actual",
		"Ratio",
		"Band",
		"Planning Rate",
		"Planning Incentive",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i := range result.Specialties {
		sr := &result.Specialties[i]
		for _, pr := range sr.Providers {
			record := []string{
				sr.Specialty,
				pr.ProviderID,
				pr.ProviderName,
				sr.GroupTarget.StringFixed(0),
				pr.Target.StringFixed(0),
				pr.Actual.StringFixed(0),
				pr.Ratio.StringFixed(4),
				string(pr.Band),
				sr.PlanningRate.StringFixed(2),
				pr.PlanningIncentive.StringFixed(0),
			}
			if err := writer.Write(record); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// flagList renders raised governance flags as a semicolon-separated list.
func flagList(f domain.GovernanceFlags) string {
	var flags []string
	if f.UnderpayRisk {
		flags = append(flags, "underpay_risk")
	}
	if f.RateBelow25th {
		flags = append(flags, "rate_below_25th")
	}
	if f.WithinPolicyBand {
		flags = append(flags, "within_policy_band")
	}
	if f.FMVCheckSuggested {
		flags = append(flags, "fmv_check_suggested")
	}
	return strings.Join(flags, ";")
}
