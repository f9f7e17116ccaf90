package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_Text(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "text"}),
		`title:"one piece" or:(tag:romance tag:!female:glasses) bogus:1`)
	require.NoError(t, err)

	assert.Equal(t,
		"and:(title:\"one piece\" or:(tag:\"romance\" tag:!\"female:glasses\"))\n"+
			"diagnostic: Category: bogus not found\n",
		out)
}

func TestParseCommand_DefaultOr(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "text"}), "--or", "a b")
	require.NoError(t, err)
	assert.Equal(t, "or:(title:\"a\" title:\"b\")\n", out)
}

func TestParseCommand_JSON(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "json"}), "chapters:>10")
	require.NoError(t, err)

	var resp struct {
		Status      string `json:"status"`
		Fingerprint string `json:"fingerprint"`
		Data        struct {
			Input       string          `json:"input"`
			Text        string          `json:"text"`
			Tree        json.RawMessage `json:"tree"`
			Diagnostics []string        `json:"diagnostics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Fingerprint)
	assert.Equal(t, "chapters:>10", resp.Data.Input)
	assert.Equal(t, "and:(chapters:>10)", resp.Data.Text)
	assert.Contains(t, string(resp.Data.Tree), `"type":"group"`)
	assert.Empty(t, resp.Data.Diagnostics)
}

func TestParseCommand_CustomRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.cue")
	require.NoError(t, os.WriteFile(path, []byte(`fields: { name: "string" }`), 0644))

	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "text"}), "--fields", path, "name:x title:y")
	require.NoError(t, err)
	assert.Equal(t, "and:(name:\"x\")\ndiagnostic: Category: title not found\n", out)
}

func TestParseCommand_MissingRegistry(t *testing.T) {
	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "text"}), "--fields", "nope.cue", "a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestParseCommand_BadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.cue")
	require.NoError(t, os.WriteFile(path, []byte(`fields: { name: "float" }`), 0644))

	out, _, err := execute(t, NewParseCommand(&RootOptions{Format: "text"}), "--fields", path, "a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}
