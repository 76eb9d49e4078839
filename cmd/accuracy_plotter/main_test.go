package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeZoo(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"full-1hl-zoo.txt":      "neurons,accuracy\n3,80\n3,90\n5,70\n",
		"full-2hl-zoo.txt":      "neurons,accuracy\n3,60\n",
		"full-min_supp-zoo.txt": "neurons,accuracy,max_level\n4,50,1\n",
		"full-min_cv-zoo.txt":   "",
		"full-min_cfc-zoo.txt":  "neurons,accuracy,max_level\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestRootCommandPlotsDataset(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeZoo(t, in)

	stdout, err := runCommand(t, "--input-dir", in, "--output-dir", out, "--datasets", "zoo", "--log-level", "error")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(out, "zoo-accuracy.png"))
	assert.NoError(t, statErr)
	assert.Contains(t, stdout, "1 of 1 datasets plotted")
	assert.Contains(t, stdout, "Fully connected (1 hidden layer)")
}

func TestRootCommandFailsOnMissingInputs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	stdout, err := runCommand(t, "--input-dir", in, "--output-dir", out, "--datasets", "zoo", "--log-level", "error", "--summary=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset zoo")
	assert.Contains(t, stdout, "0 of 1 datasets plotted, 1 failed")
}

func TestRootCommandRejectsBadFormat(t *testing.T) {
	_, err := runCommand(t, "--format", "gif", "--input-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestConfigCommandPrintsResolvedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datasets: [zoo]\nformat: svg\n"), 0o644))

	stdout, err := runCommand(t, "config", "--config", path, "--fail-fast")
	require.NoError(t, err)
	assert.Contains(t, stdout, "config file: "+path)
	assert.Contains(t, stdout, "svg")
	assert.Contains(t, stdout, "FailFast")
	assert.Contains(t, stdout, "true")
}
