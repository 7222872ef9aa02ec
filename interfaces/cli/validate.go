package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/felixgeelhaar/v2x-go/infrastructure/config"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	configPath string
	strict     bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a coordination configuration file for correctness.

This command checks:
  - File format (YAML)
  - Tunable ranges (thresholds, slowdown factor, conflict zone bounds)
  - Policy and direction enumerations
  - Store backend requirements
  - Environment variable references (in strict mode)

Examples:
  # Validate a configuration file
  v2x validate -c config.yaml

  # Strict validation (fail on missing env vars)
  v2x validate -c config.yaml --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Enable strict validation (fail on missing env vars)")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// validateConfig validates the configuration file.
func (a *App) validateConfig(opts *validateOptions) error {
	loaderOpts := []infraconfig.LoaderOption{
		infraconfig.WithValidation(true),
	}
	if opts.strict {
		loaderOpts = append(loaderOpts, infraconfig.WithStrictEnv(true))
	}

	loader := infraconfig.NewLoaderWithOptions(loaderOpts...)
	cfg, err := loader.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Approach threshold: %.1f m\n", cfg.Intersection.ApproachThreshold)
	fmt.Fprintf(a.stdout, "  Safety distance: %.1f m\n", cfg.Safety.SafetyDistance)
	fmt.Fprintf(a.stdout, "  Block policy: %s\n", cfg.Safety.BlockPolicy)
	fmt.Fprintf(a.stdout, "  Store backend: %s\n", cfg.Store.Backend)
	return nil
}
