package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// ComposeMode selects whether the productivity incentive comes from the
// record (baseline) or is computed from units at a candidate rate (modeled).
type ComposeMode string

const (
	ModeBaseline ComposeMode = "baseline"
	ModeModeled  ComposeMode = "modeled"
)

// EffectiveWRVUs returns recorded wRVUs scaled by the run's productivity
// growth assumption.
func EffectiveWRVUs(p *domain.Provider, s *domain.OptimizerSettings) decimal.Decimal {
	if s.ProductivityGrowthPct.IsZero() {
		return p.WRVUs
	}
	return p.WRVUs.Mul(decimal.NewFromInt(1).Add(s.ProductivityGrowthPct))
}

// ComposeTCC assembles a provider's total cash compensation from the resolved
// component inclusion map and the additional pay layers. In modeled mode the
// productivity incentive is units x rate; in baseline mode it is the recorded
// amount. Settings must have passed ResolveComponents.
func ComposeTCC(p *domain.Provider, s *domain.OptimizerSettings, mode ComposeMode, rate decimal.Decimal) decimal.Decimal {
	total := p.BaseSalary

	if inc, ok := s.Components[domain.ComponentQuality]; ok && inc.Included {
		amount := p.QualityPay
		if s.QualityPercentOfBase != nil {
			amount = p.BaseSalary.Mul(*s.QualityPercentOfBase)
		}
		total = total.Add(normalized(amount, inc.NormalizeByFTE, p.ClinicalFTE))
	}
	if inc, ok := s.Components[domain.ComponentOther]; ok && inc.Included {
		total = total.Add(normalized(p.OtherIncentivePay, inc.NormalizeByFTE, p.ClinicalFTE))
	}
	if inc, ok := s.Components[domain.ComponentNonClinical]; ok && inc.Included {
		total = total.Add(normalized(p.NonClinicalPay, inc.NormalizeByFTE, p.ClinicalFTE))
	}
	if inc, ok := s.Components[domain.ComponentProductivity]; ok && inc.Included {
		switch mode {
		case ModeModeled:
			total = total.Add(EffectiveWRVUs(p, s).Mul(rate))
		default:
			total = total.Add(p.RecordedIncentivePay)
		}
	}

	for i := range s.Layers {
		total = total.Add(layerAmount(&s.Layers[i], p))
	}

	return total
}

// layerAmount evaluates one additional pay layer for a provider. Unknown
// fields contribute zero rather than failing the row.
func layerAmount(l *domain.PayLayer, p *domain.Provider) decimal.Decimal {
	var amount decimal.Decimal
	switch l.Type {
	case domain.LayerPercentOfBase:
		amount = p.BaseSalary.Mul(l.Value)
	case domain.LayerPerFTEDollar:
		// Already a per-1.0-share amount; scaling by the clinical share is
		// the layer's definition, not the normalize flag.
		return l.Value.Mul(p.ClinicalFTE)
	case domain.LayerFlat:
		amount = l.Value
	case domain.LayerFromField:
		amount = p.ComponentAmount(l.Field)
	default:
		return decimal.Zero
	}
	return normalized(amount, l.NormalizeByFTE, p.ClinicalFTE)
}

// normalized treats amount as per-1.0-share when the flag is set, scaling it
// by the provider's clinical share.
func normalized(amount decimal.Decimal, normalize bool, clinicalFTE decimal.Decimal) decimal.Decimal {
	if !normalize {
		return amount
	}
	return amount.Mul(clinicalFTE)
}
