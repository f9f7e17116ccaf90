package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FieldsOptions holds flags for the fields command.
type FieldsOptions struct {
	*RootOptions
	Fields string
}

// FieldInfo describes one registered field.
type FieldInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FieldsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields a filter may use",
		Long: `List the field registry: every field name with its value kind.

Kinds:
  string   free text, optionally quoted
  cmp_int  integer with an optional >, >=, < or <= comparator
  zero_arg no value ("favorites:")
  int      exact integer`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fields, "fields", "", "CUE field registry (default: built-in manga fields)")

	return cmd
}

func runFields(opts *FieldsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := loadRegistry(opts.Fields)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}

	defs := reg.Definitions()
	infos := make([]FieldInfo, len(defs))
	for i, d := range defs {
		infos[i] = FieldInfo{Name: d.Name, Kind: d.Kind.String()}
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%-10s %s\n", info.Name, info.Kind)
	}
	return nil
}
