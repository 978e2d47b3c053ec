package list

import (
	"fmt"
	"io"

	"github.com/gobwas/glob"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/cmd/shared"
	"modelviz.dev/modelviz/internal/render"
	"modelviz.dev/modelviz/introspect"
)

const FlagFilter = "filter"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the configured models",
		Args:    cobra.NoArgs,
		Example: `  # List all models of a configuration as a table.
  modelviz models list --config modelviz.yaml -o table

  # List the models whose name starts with "Order".
  modelviz models list --config modelviz.yaml --filter 'Order*' -o yaml
`,
		RunE:              ListModels,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	render.RegisterOutputFlag(cmd, render.OutputFormatTable, render.OutputFormatJSON, render.OutputFormatYAML)
	cmd.Flags().String(FlagFilter, "", "glob pattern restricting the listed model names")
	return cmd
}

func ListModels(cmd *cobra.Command, _ []string) error {
	output, err := render.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	pattern, err := cmd.Flags().GetString(FlagFilter)
	if err != nil {
		return fmt.Errorf("getting filter flag failed: %w", err)
	}

	cfg, err := shared.GetConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := shared.GetRegistry(cmd, cfg)
	if err != nil {
		return err
	}
	summaries, err := introspect.Summarize(registry)
	if err != nil {
		return fmt.Errorf("could not inspect models: %w", err)
	}
	summaries, err = Filter(summaries, pattern)
	if err != nil {
		return err
	}

	return encode(cmd.OutOrStdout(), output, summaries)
}

// Filter keeps the summaries whose model name matches the glob pattern.
// An empty pattern keeps all of them.
func Filter(summaries []introspect.ModelSummary, pattern string) ([]introspect.ModelSummary, error) {
	if pattern == "" {
		return summaries, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}
	filtered := make([]introspect.ModelSummary, 0, len(summaries))
	for _, s := range summaries {
		if g.Match(s.Name) {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func encode(w io.Writer, output render.OutputFormat, summaries []introspect.ModelSummary) error {
	switch output {
	case render.OutputFormatJSON:
		return render.JSON(w, summaries)
	case render.OutputFormatYAML:
		return render.YAML(w, summaries)
	case render.OutputFormatTable:
		t := render.NewTable(w)
		t.AppendHeader(table.Row{"Model", "Collection", "Fields", "References"})
		for _, s := range summaries {
			t.AppendRow(table.Row{s.Name, s.Collection, len(s.Fields), references(s)})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}
}

func references(s introspect.ModelSummary) string {
	var refs string
	for _, f := range s.Fields {
		if f.Ref == "" {
			continue
		}
		if refs != "" {
			refs += ", "
		}
		refs += f.Name + " -> " + f.Ref
	}
	return refs
}
