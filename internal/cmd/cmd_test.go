package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/scriptlint/internal/config"
	"github.com/hargabyte/scriptlint/internal/diag"
	"github.com/hargabyte/scriptlint/internal/output"
)

const (
	cleanScript = `metadata:
  name: greet
  intent: Print a greeting for smoke testing
steps:
  - id: main
    type: script
`
	warnScript = cleanScript + `  - id: orphan
    type: command
    shellCommand: echo hi
`
	errorScript = `metadata:
  name: cleanup
  intent: Remove stale release artifacts from the host
steps:
  - id: main
    type: script
    steps:
      - id: wipe
        type: command
        shellCommand: rm -rf /var/cache/release
`
)

// resetFlags restores every flag to its default so commands can run
// repeatedly against the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with an isolated default config.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath, err := config.SaveDefault(t.TempDir())
	require.NoError(t, err)
	return executeWithConfig(t, cfgPath, args...)
}

func executeWithConfig(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--no-color"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(err error) int {
	if err == nil {
		return diag.ExitSuccess
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return -1
}

func TestCheck_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		args    []string
		want    int
	}{
		{"clean", cleanScript, nil, diag.ExitSuccess},
		{"warnings", warnScript, nil, diag.ExitWarnings},
		{"warnings strict", warnScript, []string{"--strict"}, diag.ExitError},
		{"warnings disabled", warnScript, []string{"--disable", "W601"}, diag.ExitSuccess},
		{"errors", errorScript, nil, diag.ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, dir, tt.name+".yaml", tt.content)
			_, err := execute(t, append([]string{"check", path}, tt.args...)...)
			assert.Equal(t, tt.want, exitCode(err), "err = %v", err)
		})
	}
}

func TestCheck_TextOutput(t *testing.T) {
	path := writeScript(t, t.TempDir(), "cleanup.yaml", errorScript)

	out, err := execute(t, "check", path)
	assert.Equal(t, diag.ExitError, exitCode(err))
	assert.Contains(t, out, "✗ E301: Destructive command not marked as destructive: wipe")
	assert.Contains(t, out, "    Command: rm -rf /var/cache/release")
	assert.Contains(t, out, "    Fix: Add 'destructive: true' to command 'wipe'")
}

func TestCheck_Directory(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.yaml", cleanScript)
	writeScript(t, dir, "nested/b.yml", warnScript)
	writeScript(t, dir, "notes.txt", "not a script")
	writeScript(t, dir, "testdata/broken.yaml", "steps: [")

	out, err := execute(t, "check", dir, "--format", "json")
	assert.Equal(t, diag.ExitWarnings, exitCode(err))

	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 2)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), report.Files[0].File)
	assert.Equal(t, filepath.Join(dir, "nested", "b.yml"), report.Files[1].File)
	assert.Equal(t, diag.ExitWarnings, report.Summary.ExitCode)
}

func TestCheck_NoFiles(t *testing.T) {
	_, err := execute(t, "check", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))
}

func TestCheck_SARIF(t *testing.T) {
	path := writeScript(t, t.TempDir(), "cleanup.yaml", errorScript)

	out, err := execute(t, "check", path, "--format", "sarif")
	assert.Equal(t, diag.ExitError, exitCode(err))
	assert.Contains(t, out, `"ruleId": "E301"`)
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "--format", "json", "--", "rm", "-rf", "/tmp/cache")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "rm -rf /tmp/cache", got["command"])
	assert.Equal(t, true, got["is_destructive"])

	out, err = execute(t, "classify", "--strategy", "regex", "test -f /etc/ready")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: regex")
	assert.Contains(t, out, "has_logic_checks: true")

	_, err = execute(t, "classify", "--strategy", "llm", "ls")
	assert.Error(t, err)
}

const graphScript = `steps:
  - id: probe
    type: command
    shellCommand: test -f /etc/ready
  - id: gate
    type: conditional
    condition:
      source: probe
    then:
      - [stage-a, stage-b]
      - [stage-b, stage-a]
    else:
      - id: start
        type: command
        shellCommand: systemctl start app
  - id: stage-a
    type: script
  - id: stage-b
    type: script
`

func TestGraph(t *testing.T) {
	path := writeScript(t, t.TempDir(), "flow.yaml", graphScript)

	out, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart LR")
	assert.Contains(t, out, "probe --> start")

	out, err = execute(t, "graph", path, "--kind", "script", "--cycles")
	require.NoError(t, err)
	assert.Equal(t, "stage-a → stage-b → stage-a\n", out)

	_, err = execute(t, "graph", path, "--kind", "script", "--order")
	assert.Error(t, err)

	out, err = execute(t, "graph", path, "--order")
	require.NoError(t, err)
	assert.Equal(t, "probe\nstart\n", out)

	out, err = execute(t, "graph", path, "--from", "probe", "--to", "start")
	require.NoError(t, err)
	assert.Equal(t, "probe → start\n", out)

	_, err = execute(t, "graph", path, "--from", "start", "--to", "probe")
	assert.ErrorContains(t, err, "no path from start to probe")

	_, err = execute(t, "graph", path, "--to", "probe")
	assert.ErrorContains(t, err, "--to requires --from")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized scriptlint config at .scriptlint/config.yaml")
	assert.FileExists(t, filepath.Join(dir, ".scriptlint", "config.yaml"))

	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Already initialized")

	out, err = execute(t, "init", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")
}

func TestServe_ListTools(t *testing.T) {
	out, err := execute(t, "serve", "--list-tools")
	require.NoError(t, err)
	assert.Contains(t, out, "lint_script")
	assert.Contains(t, out, "classify_command")

	_, err = execute(t, "serve")
	assert.Error(t, err)
}

func TestParseToolList(t *testing.T) {
	assert.Equal(t, []string{"lint_script", "classify_command"}, parseToolList("lint, classify"))
	assert.Equal(t, []string{"script_graph"}, parseToolList("script_graph"))
	assert.Nil(t, parseToolList(""))
}

func TestForAgents(t *testing.T) {
	out, err := execute(t, "--for-agents", "--help")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, Version, got["version"])
	assert.NotEmpty(t, got["commands"])
}

func TestCheck_Cache(t *testing.T) {
	cfgDir := t.TempDir()
	cfgPath, err := config.SaveDefault(cfgDir)
	require.NoError(t, err)
	path := writeScript(t, t.TempDir(), "cleanup.yaml", errorScript)

	first, err := executeWithConfig(t, cfgPath, "check", "--cache", path)
	assert.Equal(t, diag.ExitError, exitCode(err))
	second, err := executeWithConfig(t, cfgPath, "check", "--cache", path)
	assert.Equal(t, diag.ExitError, exitCode(err))
	assert.Equal(t, first, second)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfgPath), "cache.db"))

	out, err := executeWithConfig(t, cfgPath, "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 1")
	assert.Contains(t, out, "current: 1")

	out, err = executeWithConfig(t, cfgPath, "cache", "--clear")
	require.NoError(t, err)
	assert.Equal(t, "Cache cleared\n", out)

	out, err = executeWithConfig(t, cfgPath, "cache")
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 0")
}
