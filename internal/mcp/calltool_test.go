package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/hargabyte/scriptlint/internal/output"
)

const unmarked = `metadata:
  name: cleanup
  intent: Remove stale release artifacts from the host
steps:
  - id: main
    type: script
    steps:
      - id: wipe
        type: command
        intent: Remove the release cache directory
        shellCommand: rm -rf /var/cache/release
`

func newTestServer(t *testing.T, tools ...string) *Server {
	t.Helper()
	s, err := New(Config{Tools: tools})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}

	schemas := newTestServer(t).GetToolSchemas()
	if len(schemas) != len(AllTools) {
		t.Errorf("GetToolSchemas() returned %d schemas, want %d", len(schemas), len(AllTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	schema := toolSchemaRegistry[ToolClassify]
	if len(schema.Parameters) != 1 || !schema.Parameters[0].Required {
		t.Errorf("classify_command should have one required parameter, got %+v", schema.Parameters)
	}

	for _, name := range []string{ToolLint, ToolGraph} {
		for _, p := range toolSchemaRegistry[name].Parameters {
			if p.Required {
				t.Errorf("tool %s param %s is marked required but should not be", name, p.Name)
			}
		}
	}
}

func TestListTools(t *testing.T) {
	s := newTestServer(t, ToolClassify)
	if got := s.ListTools(); len(got) != 1 || got[0] != ToolClassify {
		t.Errorf("ListTools() = %v", got)
	}

	all := newTestServer(t).ListTools()
	want := append([]string(nil), AllTools...)
	sort.Strings(want)
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("ListTools()[%d] = %s, want %s", i, all[i], want[i])
		}
	}

	if _, err := New(Config{Tools: []string{"cx_map"}}); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestCallTool_Unregistered(t *testing.T) {
	s := newTestServer(t, ToolClassify)
	if _, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{"content": unmarked}); err == nil {
		t.Error("expected error for unregistered tool")
	}
}

func TestCallTool_LintContent(t *testing.T) {
	s := newTestServer(t)

	out, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{
		"content": unmarked,
		"format":  "json",
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(report.Files) != 1 || report.Files[0].File != inlineName {
		t.Fatalf("unexpected files %+v", report.Files)
	}
	errs := report.Files[0].Errors
	if len(errs) != 1 || errs[0].Code != "E301" {
		t.Errorf("expected a single E301, got %+v", errs)
	}
}

func TestCallTool_LintStrict(t *testing.T) {
	s := newTestServer(t)
	src := `steps:
  - id: main
    type: script
  - id: orphan
    type: command
    shellCommand: echo hi
`
	out, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{
		"content": src,
		"strict":  true,
		"format":  "json",
	})
	if err != nil {
		t.Fatal(err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if report.Summary.Warnings != 0 || report.Summary.Errors == 0 {
		t.Errorf("strict mode should turn warnings into errors, got %+v", report.Summary)
	}
}

func TestCallTool_LintPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanup.yaml")
	if err := os.WriteFile(path, []byte(unmarked), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t)
	out, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{"path": path, "format": "text"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "✗ E301"; !strings.Contains(out, want) {
		t.Errorf("expected %q in output:\n%s", want, out)
	}

	if _, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{}); err == nil {
		t.Error("expected error without path or content")
	}
	if _, err := s.CallTool(context.Background(), ToolLint, map[string]interface{}{"path": path, "format": "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCallTool_Classify(t *testing.T) {
	s := newTestServer(t)

	out, err := s.CallTool(context.Background(), ToolClassify, map[string]interface{}{"command": "sudo rm -rf /tmp/x"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"is_destructive: true", "uses_sudo: true", "command_name: rm"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := s.CallTool(context.Background(), ToolClassify, map[string]interface{}{}); err == nil {
		t.Error("expected error without command")
	}
}

func TestCallTool_Graph(t *testing.T) {
	s := newTestServer(t)
	src := `steps:
  - id: probe
    type: command
    shellCommand: test -f /etc/ready
  - id: gate
    type: conditional
    condition:
      source: probe
    then:
      - id: start
        type: command
        shellCommand: systemctl start app
`
	out, err := s.CallTool(context.Background(), ToolGraph, map[string]interface{}{"content": src})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "probe --> start") {
		t.Errorf("expected probe --> start edge:\n%s", out)
	}

	if _, err := s.CallTool(context.Background(), ToolGraph, map[string]interface{}{"content": src, "kind": "bogus"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}
