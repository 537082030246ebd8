// Package exclude discovers script files under a directory tree, skipping
// dependency directories and configured exclude patterns.
package exclude

import (
	"os"
	"path/filepath"
)

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (relative to the walk root, slash separated)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// Has reports whether dir was detected.
func (r *AutoExcludeResult) Has(dir string) bool {
	_, ok := r.Reasons[dir]
	return ok
}

func (r *AutoExcludeResult) add(dir, reason string) {
	if r.Has(dir) {
		return
	}
	r.Directories = append(r.Directories, dir)
	r.Reasons[dir] = reason
}

// marker ties a manifest file to the sibling directory it implies. When probe
// is set the directory only counts if it contains that file.
type marker struct {
	manifest string
	dir      string
	probe    string
	reason   string
}

var markers = []marker{
	{"package.json", "node_modules", "", "Node.js dependencies (package.json detected)"},
	{"go.mod", "vendor", "modules.txt", "Go vendored dependencies (vendor/modules.txt detected)"},
	{"composer.json", "vendor", "autoload.php", "PHP Composer dependencies (vendor/autoload.php detected)"},
	{"Gemfile", "vendor/bundle", "", "Ruby bundled gems (Gemfile detected)"},
	{"main.tf", ".terraform", "", "Terraform provider cache (main.tf detected)"},
}

// alwaysSkip lists directory names never descended into during detection.
var alwaysSkip = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".terraform":   true,
}

// DetectAutoExcludes scans root for dependency directories that should not
// be linted. Detection only relies on file existence, so it never guesses:
// a Python venv is recognised by its pyvenv.cfg, a node_modules directory by
// the package.json next to it.
func DetectAutoExcludes(root string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if result.Has(rel) || alwaysSkip[d.Name()] || underAny(rel, result.Directories) {
				return filepath.SkipDir
			}
			return nil
		}

		parent := filepath.ToSlash(filepath.Dir(rel))
		if d.Name() == "pyvenv.cfg" {
			result.add(parent, "Python virtual environment (pyvenv.cfg detected)")
			return nil
		}
		for _, m := range markers {
			if d.Name() != m.manifest {
				continue
			}
			dir := joinRel(parent, m.dir)
			abs := filepath.Join(root, filepath.FromSlash(dir))
			if m.probe != "" {
				if !fileExists(filepath.Join(abs, m.probe)) {
					continue
				}
			} else if !dirExists(abs) {
				continue
			}
			result.add(dir, m.reason)
		}
		return nil
	})

	return result
}

func joinRel(parent, dir string) string {
	if parent == "." {
		return dir
	}
	return parent + "/" + dir
}

func underAny(rel string, dirs []string) bool {
	for _, d := range dirs {
		if len(rel) > len(d) && rel[:len(d)] == d && rel[len(d)] == '/' {
			return true
		}
	}
	return false
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
