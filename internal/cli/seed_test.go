package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mangaq/internal/store"
)

func TestSeedCommand_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "directory.db")

	out, _, err := execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--db", db, directorySeed)
	require.NoError(t, err)
	assert.Contains(t, out, "3 user(s), 2 kind(s), 2 tag(s)")

	// Seeding twice keeps the existing rows.
	out, _, err = execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--db", db, directorySeed)
	require.NoError(t, err)
	assert.Contains(t, out, "3 user(s), 2 kind(s), 2 tag(s)")
}

func TestSeedCommand_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "directory.db")

	out, _, err := execute(t, NewSeedCommand(&RootOptions{Format: "json"}), "--db", db, directorySeed)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   store.Counts `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, store.Counts{Users: 3, Kinds: 2, Tags: 2}, resp.Data)
}

func TestSeedCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tags:\n  - {name: x, sex: other}\n"), 0644))

	tests := []struct {
		name string
		file string
		code string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml"), ErrCodeNotFound},
		{"invalid sex", bad, ErrCodeLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewSeedCommand(&RootOptions{Format: "text"}),
				"--db", filepath.Join(dir, tt.name+".db"), tt.file)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}
