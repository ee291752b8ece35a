package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (configPath, inputFile, inputDir string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("mappings: []\n"), 0o644))
	inputDir = filepath.Join(dir, "in")
	require.NoError(t, os.Mkdir(inputDir, 0o755))
	inputFile = filepath.Join(inputDir, "p.json")
	require.NoError(t, os.WriteFile(inputFile, []byte("{}"), 0o644))
	return configPath, inputFile, inputDir
}

func TestParse_FileToStdout(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configPath, inputFile, _ := fixture(t)
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, shouldExit, err := Parse([]string{configPath, inputFile, "--log-level", "DEBUG", "--workers", "3"}, out)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, configPath, cfg.ConfigPath)
	require.Equal(t, inputFile, cfg.InputPath)
	require.Empty(t, cfg.OutputDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, 3, cfg.Workers)
	require.False(t, cfg.InputIsDir())
}

func TestParse_FolderWithOutput(t *testing.T) {
	t.Parallel()

	configPath, _, inputDir := fixture(t)
	outDir := t.TempDir()

	cfg, _, err := Parse([]string{configPath, inputDir, "-o", outDir, "--trace-file", filepath.Join(outDir, "spans.json")}, &bytes.Buffer{})

	require.NoError(t, err)
	require.True(t, cfg.InputIsDir())
	require.Equal(t, outDir, cfg.OutputDir)
	require.True(t, cfg.Trace, "--trace-file implies --trace")
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {"--help"}, {}} {
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse(args, out)

		require.NoError(t, err, args)
		require.True(t, shouldExit, args)
		require.Nil(t, cfg)
		require.Contains(t, out.String(), "Usage:", args)
	}
}

func TestParse_Version(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"--version"}, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Contains(t, out.String(), Version)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	configPath, inputFile, inputDir := fixture(t)

	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "one argument", args: []string{configPath}, wantMsg: "accepts 2 arg(s)"},
		{name: "three arguments", args: []string{configPath, inputFile, "extra"}, wantMsg: "accepts 2 arg(s)"},
		{name: "unknown flag", args: []string{configPath, inputFile, "--nope"}, wantMsg: "unknown flag"},
		{name: "bad log format", args: []string{configPath, inputFile, "--log-format", "xml"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{configPath, inputFile, "--log-level", "loud"}, wantMsg: "invalid log-level"},
		{name: "folder without output", args: []string{configPath, inputDir}, wantMsg: "an output folder is required"},
		{name: "missing config", args: []string{configPath + ".missing", inputFile}, wantMsg: "config file"},
		{name: "missing output folder", args: []string{configPath, inputFile, "-o", inputFile + ".missing"}, wantMsg: "output folder"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})

			require.False(t, shouldExit)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
