// Package cmd assembles the modelviz command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/cmd/models"
	"modelviz.dev/modelviz/internal/cmd/serve"
	"modelviz.dev/modelviz/internal/cmd/shared"
	"modelviz.dev/modelviz/internal/cmd/version"
	"modelviz.dev/modelviz/internal/log"
)

// New returns the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelviz [sub-command]",
		Short: "Browse the schemas and documents of document mapper models",
		Long: `modelviz inspects the models of a document mapper registry and serves
them as a JSON API together with a browsing UI.

Models are declared in a configuration file together with optional fixture
documents. Use "modelviz serve" to start the visualizer and "modelviz models"
to inspect the models from the command line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.GetBaseLogger(cmd)
			if err != nil {
				return fmt.Errorf("could not retrieve logger: %w", err)
			}
			slog.SetDefault(logger)
			return nil
		},
		DisableAutoGenTag: true,
	}

	log.RegisterLoggingFlags(cmd)
	shared.RegisterConfigFlag(cmd)

	cmd.AddCommand(serve.New())
	cmd.AddCommand(models.New())
	cmd.AddCommand(version.New())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}
