package describe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/cmd/shared"
	"modelviz.dev/modelviz/internal/render"
	"modelviz.dev/modelviz/introspect"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe NAME",
		Short: "Describe the fields of a model",
		Args:  cobra.ExactArgs(1),
		Example: `  # Show the fields of the User model.
  modelviz models describe User --config modelviz.yaml -o table

  # Print the JSON Schema documents of the User model are validated against.
  modelviz models describe User --config modelviz.yaml -o jsonschema
`,
		RunE:              DescribeModel,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	render.RegisterOutputFlag(cmd, render.OutputFormatTable, render.OutputFormatJSON, render.OutputFormatYAML, render.OutputFormatJSONSchema)
	return cmd
}

func DescribeModel(cmd *cobra.Command, args []string) error {
	output, err := render.GetOutputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := shared.GetConfig(cmd)
	if err != nil {
		return err
	}
	registry, err := shared.GetRegistry(cmd, cfg)
	if err != nil {
		return err
	}

	name := args[0]
	out := cmd.OutOrStdout()
	if output == render.OutputFormatJSONSchema {
		model, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		return render.JSON(out, model.JSONSchema())
	}

	summary, err := introspect.Describe(registry, name)
	if err != nil {
		return err
	}
	switch output {
	case render.OutputFormatJSON:
		return render.JSON(out, summary)
	case render.OutputFormatYAML:
		return render.YAML(out, summary)
	case render.OutputFormatTable:
		return renderTable(out, summary)
	default:
		return fmt.Errorf("unknown output format: %q", output)
	}
}

func renderTable(w io.Writer, summary *introspect.ModelSummary) error {
	if _, err := fmt.Fprintf(w, "%s (collection %s)\n\n", summary.Name, summary.Collection); err != nil {
		return err
	}
	t := render.NewTable(w)
	t.AppendHeader(table.Row{"Field", "Type", "Flags", "Constraints"})
	for _, f := range summary.Fields {
		t.AppendRow(table.Row{f.Name, f.Type, flags(f), constraints(f)})
	}
	t.Render()
	return nil
}

func flags(f introspect.FieldDescriptor) string {
	var out []string
	for _, flag := range []struct {
		name string
		set  bool
	}{
		{"required", f.Required},
		{"unique", f.Unique},
		{"index", f.Index},
		{"array", f.IsArray},
		{"lowercase", f.Lowercase != nil && *f.Lowercase},
		{"uppercase", f.Uppercase != nil && *f.Uppercase},
		{"trim", f.Trim != nil && *f.Trim},
	} {
		if flag.set {
			out = append(out, flag.name)
		}
	}
	return strings.Join(out, ",")
}

func constraints(f introspect.FieldDescriptor) string {
	var out []string
	if f.Ref != "" {
		out = append(out, "ref="+f.Ref)
	}
	if f.Min != nil {
		out = append(out, "min="+strconv.FormatFloat(*f.Min, 'g', -1, 64))
	}
	if f.Max != nil {
		out = append(out, "max="+strconv.FormatFloat(*f.Max, 'g', -1, 64))
	}
	if f.MinLength != nil {
		out = append(out, "minlength="+strconv.Itoa(*f.MinLength))
	}
	if f.MaxLength != nil {
		out = append(out, "maxlength="+strconv.Itoa(*f.MaxLength))
	}
	if f.Match != "" {
		out = append(out, "match="+f.Match)
	}
	if len(f.Enum) > 0 {
		values := make([]string, 0, len(f.Enum))
		for _, v := range f.Enum {
			values = append(values, fmt.Sprint(v))
		}
		out = append(out, "enum="+strings.Join(values, "|"))
	}
	switch {
	case f.HasDefault && f.Default == nil:
		out = append(out, "default=null")
	case f.HasDefault:
		out = append(out, fmt.Sprintf("default=%v", f.Default))
	}
	return strings.Join(out, " ")
}
