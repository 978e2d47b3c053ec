package version

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/flags/enum"
	"modelviz.dev/modelviz/internal/render"
	"modelviz.dev/modelviz/internal/version"
)

const (
	FlagFormat            = "format"
	FlagFormatShortHand   = "f"
	FlagFormatJSON        = "json"
	FlagFormatGoBuildInfo = "gobuildinfo"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of modelviz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := enum.Get(cmd.Flags(), FlagFormat)
			if err != nil {
				return err
			}
			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("no build info available")
			}
			switch format {
			case FlagFormatJSON:
				info, err := version.FromBuildInfo(bi)
				if err != nil {
					return err
				}
				return render.JSON(cmd.OutOrStdout(), info)
			case FlagFormatGoBuildInfo:
				_, err := io.WriteString(cmd.OutOrStdout(), bi.String())
				return err
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	enum.VarP(cmd.Flags(), FlagFormat, FlagFormatShortHand, []string{FlagFormatJSON, FlagFormatGoBuildInfo}, "format of the version information")
	return cmd
}
