package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/compbench/compbench/internal/config"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/optimize"
	"github.com/compbench/compbench/internal/output"
	"github.com/compbench/compbench/internal/sweep"
	"github.com/compbench/compbench/internal/target"
)

var (
	formatFlag   string
	logLevelFlag string
	logJSONFlag  bool

	logger *zap.Logger
)

// initializeLogger creates a zap logger from the CLI flags
func initializeLogger(level string, jsonFormat bool) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var cfg zap.Config
	if jsonFormat {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

var rootCmd = &cobra.Command{
	Use:   "compbench",
	Short: "Physician compensation benchmarking and rate optimization",
	Long:  "Benchmarks provider compensation against market percentile tables and recommends conversion factor rates per specialty",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = initializeLogger(logLevelFlag, logJSONFlag)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize [input-file]",
	Short: "Recommend a conversion factor rate per specialty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		engine := optimize.NewEngine()
		result, err := engine.Run(ctx, optimize.RunRequest{
			Providers: cfg.Providers,
			Market:    cfg.Market,
			Synonyms:  cfg.Synonyms,
			Settings:  cfg.Optimizer,
		}, func(p optimize.Progress) {
			logger.Debug("optimizing specialty",
				zap.String("specialty", p.SpecialtyName),
				zap.Int("index", p.SpecialtyIndex),
				zap.Int("total", p.TotalSpecialties))
		})
		if err != nil {
			return err
		}

		logger.Info("optimization complete",
			zap.Int("specialties", result.Summary.SpecialtyCount),
			zap.Int("included", result.Summary.IncludedCount),
			zap.Int("excluded", result.Summary.ExcludedCount))

		return emitRun(result)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep [input-file]",
	Short: "Evaluate the roster at fixed market rate percentiles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		percentiles := cfg.SweepPercentiles
		if override, _ := cmd.Flags().GetStringSlice("percentiles"); len(override) > 0 {
			percentiles = percentiles[:0]
			for _, raw := range override {
				p, err := decimal.NewFromString(raw)
				if err != nil {
					return fmt.Errorf("invalid percentile %q: %w", raw, err)
				}
				percentiles = append(percentiles, p)
			}
		}

		specialties, _ := cmd.Flags().GetStringSlice("specialty")

		ctx, stop := signalContext()
		defer stop()

		runner := sweep.NewRunner()
		result, err := runner.Run(ctx, sweep.Request{
			Providers:       cfg.Providers,
			Market:          cfg.Market,
			Synonyms:        cfg.Synonyms,
			Settings:        cfg.Optimizer,
			Percentiles:     percentiles,
			SpecialtyFilter: specialties,
		}, func(p sweep.Progress) {
			logger.Debug("sweeping specialty",
				zap.String("specialty", p.SpecialtyName),
				zap.Int("index", p.SpecialtyIndex),
				zap.Int("total", p.TotalSpecialties))
		})
		if err != nil {
			return err
		}

		return emitSweep(result)
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets [input-file]",
	Short: "Derive group productivity targets and performance bands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		engine := target.NewEngine()
		result, err := engine.Run(target.Request{
			Providers:    cfg.Providers,
			Market:       cfg.Market,
			Synonyms:     cfg.Synonyms,
			Settings:     cfg.Target,
			Compensation: &cfg.Optimizer,
		})
		if err != nil {
			return err
		}

		return emitTargets(result)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a scenario file without running anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadScenario(args[0])
		if err != nil {
			return err
		}
		logger.Info("scenario is valid",
			zap.Int("providers", len(cfg.Providers)),
			zap.Int("market_rows", len(cfg.Market)))
		fmt.Printf("OK: %d providers, %d market rows\n", len(cfg.Providers), len(cfg.Market))
		return nil
	},
}

var exampleCmd = &cobra.Command{
	Use:   "example [output-file]",
	Short: "Generate an example scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		example := parser.CreateExampleConfiguration()
		if err := config.Save(example, args[0]); err != nil {
			return err
		}
		fmt.Printf("Example scenario written to %s\n", args[0])
		return nil
	},
}

// loadScenario parses and validates a scenario file, logging the failure
// before handing the error back to cobra.
func loadScenario(path string) (*config.Configuration, error) {
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(path)
	if err != nil {
		logger.Error("failed to load scenario", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// signalContext cancels the run on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func emitRun(result *domain.RunResult) error {
	switch formatFlag {
	case "csv":
		s, err := (&output.CSVFormatter{}).FormatRun(result)
		if err != nil {
			return err
		}
		fmt.Print(s)
	case "json":
		s, err := (&output.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			return err
		}
		fmt.Println(s)
	default:
		fmt.Print((&output.TableFormatter{}).FormatRun(result))
	}
	return nil
}

func emitSweep(result *domain.SweepResult) error {
	switch formatFlag {
	case "csv":
		s, err := (&output.CSVFormatter{}).FormatSweep(result)
		if err != nil {
			return err
		}
		fmt.Print(s)
	case "json":
		s, err := (&output.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			return err
		}
		fmt.Println(s)
	default:
		fmt.Print((&output.TableFormatter{}).FormatSweep(result))
	}
	return nil
}

func emitTargets(result *domain.TargetResult) error {
	switch formatFlag {
	case "csv":
		s, err := (&output.CSVFormatter{}).FormatTargets(result)
		if err != nil {
			return err
		}
		fmt.Print(s)
	case "json":
		s, err := (&output.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			return err
		}
		fmt.Println(s)
	default:
		fmt.Print((&output.TableFormatter{}).FormatTargets(result))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "table", "output format: table, csv, json")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "emit logs as JSON")

	sweepCmd.Flags().StringSlice("percentiles", nil, "percentiles to sweep, overriding the scenario file")
	sweepCmd.Flags().StringSlice("specialty", nil, "restrict the sweep to specific market specialties")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
