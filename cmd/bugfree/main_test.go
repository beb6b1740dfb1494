package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/config"
	"bugfree/internal/diagfmt"
)

const userSrc = `<?php
namespace app;

use lib\Other;
use lib\Base;

class User extends Base
{
}
`

// setupProject lays out a small project with a config written by init.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/lib/Base.php":  "<?php\nnamespace lib;\n\nclass Base\n{\n}\n",
		"src/lib/Other.php": "<?php\nnamespace lib;\n\nclass Other\n{\n}\n",
		"src/app/User.php":  userSrc,
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	_, err := execute(t, "init", root)
	require.NoError(t, err)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestLintReportsWarnings(t *testing.T) {
	root := setupProject(t)

	out, err := execute(t, "lint", "--ui", "off", "--format", "short", "--paths", "basename", root)
	assert.Equal(t, statusWarning, exitCode(err))
	assert.Contains(t, out, "User.php:4: warning: Use 'lib\\Other' is not being used")
	assert.Contains(t, out, "User.php:4: warning: Uses are not organized")
	assert.NotContains(t, out, "Base.php")
}

func TestLintWarningFlags(t *testing.T) {
	root := setupProject(t)

	_, err := execute(t, "lint", "--ui", "off", "--warnings-as-errors", root)
	assert.Equal(t, statusError, exitCode(err))

	out, err := execute(t, "lint", "--ui", "off", "--no-warnings", "--format", "short", root)
	assert.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, "lint", "--ui", "off", "--no-warnings", "--warnings-as-errors", root)
	assert.Equal(t, -1, exitCode(err))
}

func TestLintTAPToFile(t *testing.T) {
	root := setupProject(t)
	report := filepath.Join(t.TempDir(), "report.tap")

	out, err := execute(t, "lint", "--ui", "off", "--format", "tap", "-o", report, filepath.Join(root, "src"))
	assert.Equal(t, statusWarning, exitCode(err))
	assert.Empty(t, out)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, "TAP version 13", lines[0])
	assert.Equal(t, "1..3", lines[1])
	assert.Contains(t, string(data), "not ok 1 - ")
}

func TestLintJSONWithAutofix(t *testing.T) {
	root := setupProject(t)

	out, err := execute(t, "lint", "--ui", "off", "--format", "json", "--autofix", root)
	assert.NoError(t, err, "fixable findings become fixes")

	var payload diagfmt.DiagnosticsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Zero(t, payload.Count)
	var fixes int
	for _, f := range payload.Files {
		fixes += len(f.Fixes)
	}
	assert.Positive(t, fixes)

	// файл не тронут
	data, err := os.ReadFile(filepath.Join(root, "src", "app", "User.php"))
	require.NoError(t, err)
	assert.Equal(t, userSrc, string(data))
}

func TestFixRewritesFiles(t *testing.T) {
	root := setupProject(t)
	user := filepath.Join(root, "src", "app", "User.php")

	out, err := execute(t, "fix", "--ui", "off", "--dry-run", root)
	assert.NoError(t, err)
	assert.Contains(t, out, "fix:")
	data, err := os.ReadFile(user)
	require.NoError(t, err)
	assert.Equal(t, userSrc, string(data), "dry run keeps files")

	_, err = execute(t, "fix", "--ui", "off", root)
	assert.NoError(t, err)
	data, err = os.ReadFile(user)
	require.NoError(t, err)
	assert.Equal(t, "<?php\nnamespace app;\n\nuse lib\\Base;\n\nclass User extends Base\n{\n}\n", string(data))

	_, err = execute(t, "lint", "--ui", "off", root)
	assert.NoError(t, err)
}

func TestLintMissingPath(t *testing.T) {
	root := setupProject(t)
	_, err := execute(t, "lint", "--ui", "off", filepath.Join(root, "nope"))
	assert.Equal(t, -1, exitCode(err))
}

func TestInitUpdatesExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bugfree.toml")
	require.NoError(t, os.WriteFile(path, []byte("autofix = true\n"), 0o644))

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.AutoFix)
	assert.Equal(t, []string{"**/*.php"}, cfg.Include)

	yamlDir := t.TempDir()
	out, err = execute(t, "init", "--yaml", yamlDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	assert.FileExists(t, filepath.Join(yamlDir, "bugfree.yaml"))
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--hash")
	require.NoError(t, err)

	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "bugfree", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GitCommit)
	assert.Empty(t, payload.BuildDate)

	_, err = execute(t, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestTraceToFile(t *testing.T) {
	root := setupProject(t)
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")

	_, err := execute(t, "--trace", tracePath, "--trace-level", "detail", "lint", "--ui", "off", root)
	assert.Equal(t, statusWarning, exitCode(err))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	first := strings.SplitN(string(data), "\n", 2)[0]
	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &ev))
	assert.Contains(t, string(data), `"name":"check"`)
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name   string
		totals diagfmt.Totals
		strict bool
		want   int
	}{
		{"clean", diagfmt.Totals{Files: 2}, false, statusSuccess},
		{"warnings", diagfmt.Totals{Warnings: 1}, false, statusWarning},
		{"strict warnings", diagfmt.Totals{Warnings: 1}, true, statusError},
		{"errors", diagfmt.Totals{Errors: 1, Warnings: 3}, false, statusError},
		{"broken file", diagfmt.Totals{Broken: 1}, false, statusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitStatus(tt.totals, tt.strict))
		})
	}
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode("ON")
	require.NoError(t, err)
	assert.Equal(t, uiModeOn, mode)
	_, err = readUIMode("sometimes")
	assert.Error(t, err)
	assert.False(t, shouldUseTUI(uiModeOff))
}

func TestProfilingFlags(t *testing.T) {
	root := setupProject(t)
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")

	_, err := execute(t, "--cpuprofile", cpu, "--memprofile", mem, "lint", "--ui", "off", root)
	assert.Equal(t, statusWarning, exitCode(err))
	assert.FileExists(t, cpu)
	assert.FileExists(t, mem)
}
