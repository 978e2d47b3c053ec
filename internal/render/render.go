// Package render encodes command output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"modelviz.dev/modelviz/internal/flags/enum"
)

type OutputFormat string

const (
	OutputFormatTable      OutputFormat = "table"
	OutputFormatJSON       OutputFormat = "json"
	OutputFormatYAML       OutputFormat = "yaml"
	OutputFormatJSONSchema OutputFormat = "jsonschema"
)

func (f OutputFormat) String() string {
	return string(f)
}

const FlagOutput = "output"

// RegisterOutputFlag adds the -o flag. The first format is the default on a
// terminal; when output is redirected and the flag is unset, json is used.
func RegisterOutputFlag(cmd *cobra.Command, formats ...OutputFormat) {
	options := make([]string, 0, len(formats))
	for _, f := range formats {
		options = append(options, f.String())
	}
	enum.VarP(cmd.Flags(), FlagOutput, "o", options, "output format (defaults to json when output is not a terminal)")
}

// GetOutputFormat returns the selected output format.
func GetOutputFormat(cmd *cobra.Command) (OutputFormat, error) {
	value, err := enum.Get(cmd.Flags(), FlagOutput)
	if err != nil {
		return "", fmt.Errorf("getting output flag failed: %w", err)
	}
	format := OutputFormat(value)
	if !cmd.Flags().Changed(FlagOutput) && format == OutputFormatTable && !IsTerminal(cmd.OutOrStdout()) {
		return OutputFormatJSON, nil
	}
	return format, nil
}

// IsTerminal reports whether the writer is connected to a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML. The value is encoded through its JSON form so json
// tags apply and object keys keep their order.
func YAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("failed to convert to yaml: %w", err)
	}
	resetStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// resetStyle drops the flow style inherited from the JSON input.
func resetStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle {
		n.Style = 0
	}
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// NewTable returns a borderless table writing to w on Render.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}
