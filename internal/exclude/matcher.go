package exclude

import (
	"path"
	"path/filepath"
	"strings"
)

// Matcher answers whether a directory below the project root is skipped.
type Matcher struct {
	names    map[string]bool
	patterns []string
	dirs     []string
}

// NewMatcher combines DefaultDirs, config patterns ("venv/**",
// "legacy/*") and auto-detected directories.
func NewMatcher(patterns []string, auto *AutoExcludeResult) *Matcher {
	m := &Matcher{names: make(map[string]bool)}
	for _, n := range DefaultDirs {
		m.names[n] = true
	}
	for _, p := range patterns {
		p = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(p)), "/**")
		if p != "" {
			m.patterns = append(m.patterns, p)
		}
	}
	if auto != nil {
		m.dirs = append(m.dirs, auto.Directories...)
	}
	return m
}

// SkipDir reports whether rel (relative to the root) is excluded.
func (m *Matcher) SkipDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if m.names[path.Base(rel)] {
		return true
	}
	for _, d := range m.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	for _, p := range m.patterns {
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
		// A single-segment pattern matches that directory name anywhere
		if !strings.Contains(p, "/") {
			if ok, _ := path.Match(p, path.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}
