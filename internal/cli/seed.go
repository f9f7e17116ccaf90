package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load users, kinds and tags into a directory",
		Long: `Load a YAML seed file into a SQLite directory, creating the database
if it doesn't exist. Entries already present are kept with their ids.

Seed file format:
  users: [oda, toriyama]
  kinds: [manga, manhwa]
  tags:
    - {name: romance}
    - {name: glasses, sex: female}

Example:
  mangaq seed ./directory.yaml --db ./directory.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("seed file not found: %s", path))
	}

	st, err := openDirectory(ctx, DirectoryOptions{Database: opts.Database, Seed: path}, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing directory", "error", closeErr)
		}
	}()

	counts, err := st.Count(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}
	logger.Info("directory seeded", "db", opts.Database, "users", counts.Users, "kinds", counts.Kinds, "tags", counts.Tags)

	if formatter.Format == "json" {
		return formatter.Success(counts)
	}

	fmt.Fprintf(formatter.Writer, "✓ Directory %s: %d user(s), %d kind(s), %d tag(s)\n",
		opts.Database, counts.Users, counts.Kinds, counts.Tags)
	return nil
}
