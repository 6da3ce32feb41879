// Package config loads and validates scenario files for the engine.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/compbench/compbench/internal/domain"
)

// Configuration is the complete input scenario: roster, market table,
// synonyms, and settings.
type Configuration struct {
	Providers []domain.Provider        `yaml:"providers" json:"providers"`
	Market    []domain.MarketRow       `yaml:"market" json:"market"`
	Synonyms  domain.SynonymMap        `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
	Optimizer domain.OptimizerSettings `yaml:"optimizer" json:"optimizer"`
	Target    domain.TargetSettings    `yaml:"target" json:"target"`

	SweepPercentiles []decimal.Decimal `yaml:"sweep_percentiles,omitempty" json:"sweep_percentiles,omitempty"`
}

// DefaultConfiguration returns a configuration with every setting at its
// documented default. Unmarshalling a scenario file over it leaves absent
// keys at these values, so consumers always see a fully-resolved
// configuration.
func DefaultConfiguration() Configuration {
	cfg := Configuration{
		Optimizer: domain.DefaultOptimizerSettings(),
		Target:    domain.DefaultTargetSettings(),
	}
	// The component map must stay empty until after unmarshalling, so a
	// scenario file's legacy inclusion flags can participate in resolution;
	// ResolveComponents back-fills the defaults afterward.
	cfg.Optimizer.Components = nil
	return cfg
}

// InputParser handles parsing of scenario files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML file, applies defaults, resolves
// the component inclusion map, and validates before returning.
func (ip *InputParser) LoadFromFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config := DefaultConfiguration()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Optimizer.ResolveComponents()

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ValidateConfiguration validates the loaded scenario.
func (ip *InputParser) ValidateConfiguration(config *Configuration) error {
	if len(config.Providers) == 0 {
		return fmt.Errorf("no providers provided")
	}
	if len(config.Market) == 0 {
		return fmt.Errorf("no market rows provided")
	}
	seen := make(map[string]bool, len(config.Providers))
	for i := range config.Providers {
		p := &config.Providers[i]
		if err := ip.validateProvider(p); err != nil {
			return fmt.Errorf("provider %d (%s) validation failed: %w", i, p.Name, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate provider id: %s", p.ID)
		}
		seen[p.ID] = true
	}
	for i := range config.Market {
		if config.Market[i].Specialty == "" {
			return fmt.Errorf("market row %d: specialty label is required", i)
		}
	}
	if err := config.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer settings validation failed: %w", err)
	}
	if err := config.Target.Validate(); err != nil {
		return fmt.Errorf("target settings validation failed: %w", err)
	}
	for _, p := range config.SweepPercentiles {
		if p.LessThan(decimal.NewFromInt(1)) || p.GreaterThan(decimal.NewFromInt(99)) {
			return fmt.Errorf("sweep percentile %s outside [1,99]", p.String())
		}
	}
	return nil
}

// validateProvider validates a single roster record. Market-data problems are
// not checked here; those are handled per provider during a run.
func (ip *InputParser) validateProvider(p *domain.Provider) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	for name, fte := range map[string]decimal.Decimal{
		"clinical_fte": p.ClinicalFTE,
		"admin_fte":    p.AdminFTE,
		"research_fte": p.ResearchFTE,
		"teaching_fte": p.TeachingFTE,
	} {
		if fte.IsNegative() {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	if p.TotalFTE().GreaterThan(decimal.NewFromFloat(1.5)) {
		return fmt.Errorf("total FTE cannot exceed 1.5")
	}
	if p.WRVUs.IsNegative() {
		return fmt.Errorf("wRVUs cannot be negative")
	}
	if p.BaseSalary.IsNegative() {
		return fmt.Errorf("base salary cannot be negative")
	}
	if p.ConversionFactor.IsNegative() {
		return fmt.Errorf("conversion factor cannot be negative")
	}
	return nil
}

// Save writes a configuration back to a YAML file.
func Save(config *Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// CreateExampleConfiguration builds a small, self-consistent scenario for
// documentation and smoke testing.
func (ip *InputParser) CreateExampleConfiguration() *Configuration {
	cfg := DefaultConfiguration()

	cfg.Providers = []domain.Provider{
		{
			ID: "MD-1001", Name: "Provider A", Specialty: "Family Medicine",
			ClinicalFTE:          decimal.NewFromFloat(1.0),
			WRVUs:                decimal.NewFromInt(4800),
			BaseSalary:           decimal.NewFromInt(240000),
			QualityPay:           decimal.NewFromInt(12000),
			RecordedIncentivePay: decimal.NewFromInt(18000),
			ConversionFactor:     decimal.NewFromFloat(45.00),
		},
		{
			ID: "MD-1002", Name: "Provider B", Specialty: "Family Practice",
			ClinicalFTE:      decimal.NewFromFloat(0.8),
			AdminFTE:         decimal.NewFromFloat(0.2),
			WRVUs:            decimal.NewFromInt(3600),
			BaseSalary:       decimal.NewFromInt(200000),
			QualityPay:       decimal.NewFromInt(8000),
			ConversionFactor: decimal.NewFromFloat(45.00),
		},
		{
			ID: "MD-2001", Name: "Provider C", Specialty: "Cardiology",
			ClinicalFTE:          decimal.NewFromFloat(0.9),
			ResearchFTE:          decimal.NewFromFloat(0.1),
			WRVUs:                decimal.NewFromInt(7400),
			BaseSalary:           decimal.NewFromInt(480000),
			RecordedIncentivePay: decimal.NewFromInt(55000),
			ConversionFactor:     decimal.NewFromFloat(62.00),
		},
	}

	cfg.Market = []domain.MarketRow{
		{
			Specialty: "Family Medicine",
			TCC: domain.PercentilePoints{
				P25: decimal.NewFromInt(230000), P50: decimal.NewFromInt(265000),
				P75: decimal.NewFromInt(305000), P90: decimal.NewFromInt(350000),
			},
			Productivity: domain.PercentilePoints{
				P25: decimal.NewFromInt(3900), P50: decimal.NewFromInt(4700),
				P75: decimal.NewFromInt(5600), P90: decimal.NewFromInt(6500),
			},
			Rate: domain.PercentilePoints{
				P25: decimal.NewFromFloat(42.50), P50: decimal.NewFromFloat(48.00),
				P75: decimal.NewFromFloat(54.50), P90: decimal.NewFromFloat(61.00),
			},
		},
		{
			Specialty: "Cardiology",
			TCC: domain.PercentilePoints{
				P25: decimal.NewFromInt(430000), P50: decimal.NewFromInt(510000),
				P75: decimal.NewFromInt(610000), P90: decimal.NewFromInt(720000),
			},
			Productivity: domain.PercentilePoints{
				P25: decimal.NewFromInt(6200), P50: decimal.NewFromInt(7600),
				P75: decimal.NewFromInt(9200), P90: decimal.NewFromInt(10900),
			},
			Rate: domain.PercentilePoints{
				P25: decimal.NewFromFloat(56.00), P50: decimal.NewFromFloat(64.00),
				P75: decimal.NewFromFloat(73.00), P90: decimal.NewFromFloat(82.50),
			},
		},
	}

	cfg.Synonyms = domain.SynonymMap{
		"Family Practice": "Family Medicine",
	}

	cfg.SweepPercentiles = []decimal.Decimal{
		decimal.NewFromInt(25), decimal.NewFromInt(40),
		decimal.NewFromInt(50), decimal.NewFromInt(65),
	}

	return &cfg
}
