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

func runCLI(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()

	for _, k := range []string{"MODEL_API_KEY", "GOOGLE_API_KEY", "DEEPSEEK_API_KEY", "MODEL_NAME", "MODEL_BASE_URL", "LOG_LEVEL", "LOG_FORMAT", "GIN_MODE"} {
		t.Setenv(k, "")
	}
	t.Setenv("MODEL_PROVIDER", "stub")
	t.Setenv("HISTORY_DB", "off")
	t.Setenv("STUB_RESPONSE", "Classification: narrowband (92%)")
	for k, v := range env {
		t.Setenv(k, v)
	}

	// Flag variables survive between Execute calls.
	apiKey, exportDir, verbose = "", "", false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClassifyCommandWritesReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	out, _, err := runCLI(t, map[string]string{"MODEL_API_KEY": "k"},
		"classify", "--peak-frequency", "1420.0", "--drift-rate", "0", "--snr", "10", "--pulse-width", "1",
		"--export-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "Classification: narrowband (92%)\n", out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "report_"))

	body, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(body), "1420.000")
}

func TestClassifyCommandKeyFlag(t *testing.T) {
	out, _, err := runCLI(t, nil, "classify", "--api-key", "from-flag")
	require.NoError(t, err)
	assert.Contains(t, out, "narrowband")
}

func TestClassifyCommandMissingCredential(t *testing.T) {
	out, _, err := runCLI(t, nil, "classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential_missing")
	assert.Empty(t, out)
}
