package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mangaq/internal/search"
)

// HomeOptions holds flags for the home command.
type HomeOptions struct {
	*RootOptions
	DirectoryOptions
	User   string
	Select []string
}

// HomeSection is one compiled home page section.
type HomeSection struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// NewHomeCommand creates the home command.
func NewHomeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HomeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Compile the home page sections",
		Long: `Compile every home page section for a viewer: newest, trending,
reading, favorites, latest updates and random picks.

The reading and favorites sections are per-viewer, so --user is required.

Example:
  mangaq home --seed ./directory.yaml --user alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHome(opts, cmd)
		},
	}

	addDirectoryFlags(cmd, &opts.DirectoryOptions)
	cmd.Flags().StringVar(&opts.User, "user", "", "name of the viewing user (required)")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "projected fields (default: all catalog fields)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runHome(opts *HomeOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	st, err := openDirectory(ctx, opts.DirectoryOptions, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing directory", "error", closeErr)
		}
	}()

	viewer, err := resolveViewer(ctx, st, opts.User, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}

	compiler := search.NewCompiler(st, search.Config{
		Viewer: viewer,
		Fields: opts.Select,
		Logger: logger,
	})
	sections, err := compiler.CompileHome(ctx)
	if err != nil {
		if search.IsInvalidInput(err) {
			return formatter.Fail(ExitFailure, ErrCodeInvalidInput, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	out := make([]HomeSection, len(sections))
	for i, s := range sections {
		out[i] = HomeSection{Name: s.Name, Query: s.Query}
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	for _, s := range out {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", s.Name, s.Query)
	}
	return nil
}
