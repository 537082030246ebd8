package exclude

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which files under a root are linted.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates the glob patterns. Include patterns match a file's
// base name; exclude patterns match the slash-separated path relative to the
// walk root and may use **.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &Matcher{include: include, exclude: exclude}, nil
}

// Included reports whether a file named name is a lint candidate.
func (m *Matcher) Included(name string) bool {
	if len(m.include) == 0 {
		return true
	}
	for _, p := range m.include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Excluded reports whether the relative path rel is excluded.
func (m *Matcher) Excluded(rel string) bool {
	for _, p := range m.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// excludedDir reports whether every path beneath dir is excluded, so the
// walk can skip it.
func (m *Matcher) excludedDir(dir string) bool {
	return m.Excluded(dir) || m.Excluded(path.Join(dir, "_"))
}

// Collect expands args into the files to lint. Files named explicitly are
// always kept; directories are walked in lexical order. The result keeps the
// order of args and contains no duplicates.
func (m *Matcher) Collect(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		auto := DetectAutoExcludes(arg)
		err = filepath.WalkDir(arg, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == arg {
				return nil
			}
			rel, err := filepath.Rel(arg, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if auto.Has(rel) || m.excludedDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if m.Included(d.Name()) && !m.Excluded(rel) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}
