package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/queryir"
	"github.com/roach88/mangaq/internal/search"
	"github.com/roach88/mangaq/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	DirectoryOptions

	Fields      string
	Or          bool
	Order       string
	Desc        bool
	Page        uint
	Limit       uint
	User        string   // viewer name, resolved through the directory
	Select      []string // projected fields; empty uses search.DefaultFields
	Concurrency int
	Output      string // output file path
}

// CompilationResult is the compile command's payload.
type CompilationResult struct {
	Query       string   `json:"query"`
	Tree        string   `json:"tree"`
	Diagnostics []string `json:"diagnostics"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Compile a filter into a catalog query",
		Long: `Parse a filter, resolve names through the identifier directory and
print the final catalog query.

Names (artists, authors, uploaders, kinds, tags) are looked up in the
directory given by --db, optionally seeded first from --seed. Without --db
an empty in-memory directory is used.

Exit codes:
  0 - Query compiled
  1 - Query rejected (unresolvable name, invalid plan)
  2 - Command error (bad flags, missing files, database errors)

Examples:
  mangaq compile 'artist:oda chapters:>100' --db ./directory.db
  mangaq compile 'tag:romance' --seed ./directory.yaml --order random
  mangaq compile 'favorites:' --seed ./directory.yaml --user alice --order popularity --desc`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	addDirectoryFlags(cmd, &opts.DirectoryOptions)
	cmd.Flags().StringVar(&opts.Fields, "fields", "", "CUE field registry (default: built-in manga fields)")
	cmd.Flags().BoolVar(&opts.Or, "or", false, "use OR as the default operator")
	cmd.Flags().StringVar(&opts.Order, "order", queryir.OrderCreated.String(), "sort order")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().UintVar(&opts.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().UintVar(&opts.Limit, "limit", 20, "records per page")
	cmd.Flags().StringVar(&opts.User, "user", "", "name of the viewing user")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "projected fields (default: all catalog fields)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", search.DefaultConcurrency, "maximum concurrent name lookups")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func addDirectoryFlags(cmd *cobra.Command, opts *DirectoryOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite directory (default: in-memory)")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "YAML seed file loaded into the directory first")
}

func runCompile(opts *CompileOptions, raw string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	order, err := queryir.ParseOrder(opts.Order)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadRequest, err)
	}

	reg, err := loadRegistry(opts.Fields)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}

	root, diags := filter.Parse(raw, opts.Or, reg)

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
		Viewer:      viewer,
		Fields:      opts.Select,
		Concurrency: opts.Concurrency,
		Logger:      logger,
	})
	query, err := compiler.Compile(ctx, search.Request{
		Order:  order,
		Desc:   opts.Desc,
		Page:   opts.Page,
		Limit:  opts.Limit,
		Filter: root,
	})
	if err != nil {
		if search.IsInvalidInput(err) {
			return formatter.Fail(ExitFailure, ErrCodeInvalidInput, err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(query+"\n"), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Errorf("writing output file: %w", err))
		}
		formatter.VerboseLog("Wrote query to %s", opts.Output)
	}

	if formatter.Format == "json" {
		fingerprint, _ := filter.Fingerprint(root)
		if diags == nil {
			diags = []string{}
		}
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status:      "ok",
			Data:        CompilationResult{Query: query, Tree: root.String(), Diagnostics: diags},
			Fingerprint: fingerprint,
		})
	}

	for _, d := range diags {
		fmt.Fprintf(formatter.GetErrWriter(), "diagnostic: %s\n", d)
	}
	fmt.Fprintln(formatter.Writer, query)
	return nil
}

// resolveViewer maps a user name to its record id. An empty name means no
// viewer.
func resolveViewer(ctx context.Context, st *store.Store, name string, logger *slog.Logger) (string, error) {
	if name == "" {
		return "", nil
	}
	id, err := st.ResolveUserID(ctx, name)
	if err != nil {
		return "", &LoadError{Code: ErrCodeNotFound, Message: "resolving --user", Err: err}
	}
	logger.Debug("resolved viewer", "user", name, "id", id)
	return id, nil
}
