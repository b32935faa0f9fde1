package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDryRun(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"-dry-run", "-pause", "0s", "Hello", "  world\n"}, &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Hello world\n", out.String())
}

func TestRunDryRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("dots ", 50)), 0644))

	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"-dry-run", "-pause", "0s", "-file", path}, &out))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestRunFailuresReturnCodes(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"-file", filepath.Join(t.TempDir(), "missing")}, &out))
	assert.Equal(t, 1, run([]string{"-port", filepath.Join(t.TempDir(), "ttyNONE"), "hi"}, &out))
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &out))
	assert.Equal(t, 0, run([]string{"-dry-run", "   "}, &out), "nothing to send")
	assert.Empty(t, out.String())
}
