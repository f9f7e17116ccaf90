package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/mangaq/internal/field"
	"github.com/roach88/mangaq/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No scenario files found
	ErrCodeLoadFailed   = "E004" // Field registry or seed file failed to load
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeInvalidInput = "E006" // Query rejected during resolution or compilation
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeStoreFailed  = "E008" // Directory database error
	ErrCodeBadRequest   = "E009" // Invalid order, page or limit flag
)

// LoadError represents a failure to load one of the CLI's inputs.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DirectoryOptions are the flags shared by commands that resolve names.
type DirectoryOptions struct {
	Database string // SQLite path; empty means an in-memory directory
	Seed     string // optional YAML seed file loaded before use
}

// newLogger builds the process logger. Debug records appear only under
// --verbose; everything goes to w, normally stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadRegistry returns the CUE registry at path, or the built-in manga
// registry when path is empty.
func loadRegistry(path string) (*field.Registry, error) {
	if path == "" {
		return field.MangaRegistry(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("field registry not found: %s", path)}
	}
	reg, err := field.LoadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "loading field registry", Err: err}
	}
	return reg, nil
}

// openDirectory opens the directory database and applies the seed file.
// The caller closes the store.
func openDirectory(ctx context.Context, opts DirectoryOptions, logger *slog.Logger) (*store.Store, error) {
	path := opts.Database
	if path == "" {
		path = ":memory:"
	}

	logger.Debug("opening directory", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: "opening directory", Err: err}
	}

	if opts.Seed == "" {
		return st, nil
	}

	seed, err := store.LoadSeedFile(opts.Seed)
	if err != nil {
		st.Close()
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "loading seed file", Err: err}
	}
	if err := st.Seed(ctx, seed); err != nil {
		st.Close()
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: "seeding directory", Err: err}
	}
	logger.Debug("directory seeded", "seed", opts.Seed,
		"users", len(seed.Users), "kinds", len(seed.Kinds), "tags", len(seed.Tags))
	return st, nil
}

// errorCode returns the CLI error code carried by err.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
