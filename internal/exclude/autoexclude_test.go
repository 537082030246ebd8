package exclude

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func TestDetectAutoExcludes_Empty(t *testing.T) {
	result := DetectAutoExcludes(t.TempDir())

	if len(result.Directories) != 0 {
		t.Errorf("expected 0 directories, got %d: %v", len(result.Directories), result.Directories)
	}
}

func TestDetectAutoExcludes_Node(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "package.json"), "{}")
	mkdir(t, filepath.Join(tmpDir, "node_modules"))

	result := DetectAutoExcludes(tmpDir)

	if !result.Has("node_modules") {
		t.Errorf("expected node_modules, got %v", result.Directories)
	}
	if result.Reasons["node_modules"] == "" {
		t.Error("expected reason for node_modules")
	}
}

func TestDetectAutoExcludes_Node_NoModules(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "package.json"), "{}")

	result := DetectAutoExcludes(tmpDir)

	if len(result.Directories) != 0 {
		t.Errorf("expected 0 directories (no node_modules/), got %v", result.Directories)
	}
}

func TestDetectAutoExcludes_GoVendorProbe(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "go.mod"), "module example.com/x\n")
	mkdir(t, filepath.Join(tmpDir, "vendor"))

	if result := DetectAutoExcludes(tmpDir); result.Has("vendor") {
		t.Error("vendor/ without modules.txt should not be excluded")
	}

	writeFile(t, filepath.Join(tmpDir, "vendor", "modules.txt"), "")
	if result := DetectAutoExcludes(tmpDir); !result.Has("vendor") {
		t.Errorf("expected vendor, got %v", result.Directories)
	}
}

func TestDetectAutoExcludes_Nested(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "infra", "main.tf"), "")
	mkdir(t, filepath.Join(tmpDir, "infra", ".terraform"))
	writeFile(t, filepath.Join(tmpDir, "tools", "env", "pyvenv.cfg"), "home = /usr/bin\n")

	result := DetectAutoExcludes(tmpDir)

	for _, dir := range []string{"infra/.terraform", "tools/env"} {
		if !result.Has(dir) {
			t.Errorf("expected %s in %v", dir, result.Directories)
		}
	}
}
