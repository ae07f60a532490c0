package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/cmd"
)

// TestRootCommandHelp runs the bare root command end to end: config from
// env, app init against a temp database, help text on stdout.
func TestRootCommandHelp(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("TAGSMITH_DATABASE_PRIMARY_PATH", filepath.Join(tmp, "tagsmith.db"))

	// Run from an empty directory so no local config.yaml interferes.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { os.Chdir(wd) })

	oldArgs := os.Args
	os.Args = []string{"tagsmith"}
	t.Cleanup(func() { os.Args = oldArgs })

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd.Execute()

	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	buf.ReadFrom(r)

	output := buf.String()
	assert.Contains(t, output, "tagsmith")
	assert.Contains(t, output, "Available Commands")
}
