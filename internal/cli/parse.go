package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mangaq/internal/filter"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Fields string // CUE field registry; empty uses the built-in registry
	Or     bool   // OR as the default group operator
}

// ParseResult is the parse command's payload.
type ParseResult struct {
	Input       string        `json:"input"`
	Text        string        `json:"text"`
	Tree        *filter.Group `json:"tree"`
	Diagnostics []string      `json:"diagnostics"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a filter into its group tree",
		Long: `Parse a filter string and print the resulting group tree.

Unknown fields and malformed values never fail the command: the offending
token is dropped and reported as a diagnostic.

Examples:
  mangaq parse 'title:"one piece" or:(tag:romance tag:!female:glasses)'
  mangaq parse --or 'a b' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fields, "fields", "", "CUE field registry (default: built-in manga fields)")
	cmd.Flags().BoolVar(&opts.Or, "or", false, "use OR as the default operator")

	return cmd
}

func runParse(opts *ParseOptions, raw string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, err := loadRegistry(opts.Fields)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}

	root, diags := filter.Parse(raw, opts.Or, reg)
	formatter.VerboseLog("Parsed %d leaf(s) with %d diagnostic(s)", len(filter.Leaves(root)), len(diags))

	if formatter.Format == "json" {
		fingerprint, _ := filter.Fingerprint(root)
		if diags == nil {
			diags = []string{}
		}
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status:      "ok",
			Data:        ParseResult{Input: raw, Text: root.String(), Tree: root, Diagnostics: diags},
			Fingerprint: fingerprint,
		})
	}

	fmt.Fprintln(formatter.Writer, root.String())
	for _, d := range diags {
		fmt.Fprintf(formatter.Writer, "diagnostic: %s\n", d)
	}
	return nil
}
