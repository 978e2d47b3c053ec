package models

import (
	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/cmd/models/describe"
	"modelviz.dev/modelviz/internal/cmd/models/list"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "models",
		Aliases:           []string{"model"},
		Short:             "Inspect the configured models without starting a server",
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(list.New())
	cmd.AddCommand(describe.New())
	return cmd
}
