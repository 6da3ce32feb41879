package optimize

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// Spend within this fraction below the cap reports as "within" rather than
// "under".
var budgetWithinBand = decimal.NewFromFloat(0.05)

// Reconcile compares aggregate modeled incentive dollars against the cap:
// over when spend exceeds the cap, within when it lands in the band just
// under it, under otherwise. Read-only: an over-budget result is a reporting
// signal, never a trigger for re-optimization.
func Reconcile(totalIncentive, cap decimal.Decimal) domain.BudgetResult {
	result := domain.BudgetResult{
		CapDollars:   cap,
		TotalDollars: totalIncentive,
		DeltaDollars: totalIncentive.Sub(cap),
	}
	switch {
	case result.DeltaDollars.GreaterThan(decimal.Zero):
		result.Status = domain.BudgetOver
	case totalIncentive.GreaterThanOrEqual(cap.Mul(decimal.NewFromInt(1).Sub(budgetWithinBand))):
		result.Status = domain.BudgetWithin
	default:
		result.Status = domain.BudgetUnder
	}
	return result
}
