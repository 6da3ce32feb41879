package domain

import (
	"github.com/shopspring/decimal"
)

// Provider represents one physician or advanced-practice provider on the roster.
type Provider struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Specialty string `yaml:"specialty" json:"specialty"`
	Division  string `yaml:"division,omitempty" json:"division,omitempty"`
	Role      string `yaml:"role,omitempty" json:"role,omitempty"`

	// Time-equivalent shares. ClinicalFTE is the divisor for all
	// per-1.0-share normalization and must be validated non-zero first.
	ClinicalFTE decimal.Decimal `yaml:"clinical_fte" json:"clinical_fte"`
	AdminFTE    decimal.Decimal `yaml:"admin_fte,omitempty" json:"admin_fte,omitempty"`
	ResearchFTE decimal.Decimal `yaml:"research_fte,omitempty" json:"research_fte,omitempty"`
	TeachingFTE decimal.Decimal `yaml:"teaching_fte,omitempty" json:"teaching_fte,omitempty"`

	// Productivity for the measurement period.
	WRVUs          decimal.Decimal `yaml:"wrvus" json:"wrvus"`
	SecondaryUnits decimal.Decimal `yaml:"secondary_units,omitempty" json:"secondary_units,omitempty"`

	// Recorded cash compensation components.
	BaseSalary           decimal.Decimal `yaml:"base_salary" json:"base_salary"`
	NonClinicalPay       decimal.Decimal `yaml:"non_clinical_pay,omitempty" json:"non_clinical_pay,omitempty"`
	QualityPay           decimal.Decimal `yaml:"quality_pay,omitempty" json:"quality_pay,omitempty"`
	RecordedIncentivePay decimal.Decimal `yaml:"recorded_incentive_pay,omitempty" json:"recorded_incentive_pay,omitempty"`
	OtherIncentivePay    decimal.Decimal `yaml:"other_incentive_pay,omitempty" json:"other_incentive_pay,omitempty"`
	ExtraComponents      []PayComponent  `yaml:"extra_components,omitempty" json:"extra_components,omitempty"`

	// Current conversion factor for this provider, when the organization
	// tracks one. Zero means unknown.
	ConversionFactor decimal.Decimal `yaml:"conversion_factor,omitempty" json:"conversion_factor,omitempty"`

	UsesProductivityModel bool `yaml:"uses_productivity_model,omitempty" json:"uses_productivity_model,omitempty"`
}

// PayComponent is an itemized pay element beyond the built-in fields.
type PayComponent struct {
	Name   string          `yaml:"name" json:"name"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// TotalFTE returns the sum of all time-equivalent shares.
func (p *Provider) TotalFTE() decimal.Decimal {
	return p.ClinicalFTE.Add(p.AdminFTE).Add(p.ResearchFTE).Add(p.TeachingFTE)
}

// WRVUsPerClinicalFTE returns productivity normalized to a 1.0 clinical
// share. The second return is false when the clinical share is zero and no
// normalization is possible.
func (p *Provider) WRVUsPerClinicalFTE() (decimal.Decimal, bool) {
	if p.ClinicalFTE.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return p.WRVUs.Div(p.ClinicalFTE), true
}

// ComponentAmount looks up an itemized component by name. Missing components
// contribute zero.
func (p *Provider) ComponentAmount(name string) decimal.Decimal {
	for _, c := range p.ExtraComponents {
		if c.Name == name {
			return c.Amount
		}
	}
	return decimal.Zero
}
