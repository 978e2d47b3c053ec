// Package shared holds the configuration handling common to all commands.
package shared

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/config"
	"modelviz.dev/modelviz/odm"
)

const FlagConfig = "config"

func RegisterConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "path to the modelviz configuration file (yaml or json)")
}

// GetConfig loads the file named by --config, or the default configuration
// if the flag is empty.
func GetConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return nil, fmt.Errorf("getting config flag failed: %w", err)
	}
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(cmd.Context(), "loaded configuration", slog.String("realm", "config"), slog.String("path", path))
	return cfg, nil
}

// GetRegistry builds a registry holding the configured models and their
// fixtures.
func GetRegistry(cmd *cobra.Command, cfg *config.Config) (*odm.Registry, error) {
	registry := odm.NewRegistry()
	if err := cfg.Register(registry); err != nil {
		return nil, fmt.Errorf("could not register models: %w", err)
	}
	if err := cfg.LoadFixtures(cmd.Context(), registry); err != nil {
		return nil, fmt.Errorf("could not load fixtures: %w", err)
	}
	return registry, nil
}
