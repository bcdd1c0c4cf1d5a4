package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/naas/pkg/tact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("NAAS_STORE", "")
	t.Setenv("NAAS_TONES", "")
	t.Setenv("NAAS_DEFAULT_TONE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		assert.Regexp(t, `^naas version \d+\.\d+\.\d+\n$`, run(t, "", "version"))
	})

	t.Run("tones", func(t *testing.T) {
		out := run(t, "", "tones")
		assert.True(t, strings.HasPrefix(out, "* gentle\n  firm\n"), out)
	})

	t.Run("score", func(t *testing.T) {
		out := run(t, "", "score", "--json=false", "No.")
		assert.Contains(t, out, "45%")
		assert.Contains(t, out, "bluntness (-5 each): no")
	})

	t.Run("score from stdin as json", func(t *testing.T) {
		out := run(t, "I appreciate it, but no.", "score", "--json")
		var a tact.Analysis
		require.NoError(t, json.Unmarshal([]byte(out), &a))
		assert.Equal(t, 53, a.Score)
	})

	t.Run("theme", func(t *testing.T) {
		assert.Equal(t, "light\n", run(t, "", "theme"))
		assert.Equal(t, "dark\n", run(t, "", "theme", "set", "dark"))
		assert.Equal(t, "dark\n", run(t, "", "theme", "toggle"), "each run starts from the default theme")
	})

	t.Run("session ls", func(t *testing.T) {
		assert.Equal(t, "No active sessions found.\n", run(t, "", "session", "ls"))
	})
}
