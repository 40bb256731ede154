// Package exclude decides which directories the project scanner skips:
// well-known tool directories, configured patterns and dependency
// directories detected from marker files.
package exclude

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirs are directory names never scanned, at any depth.
var DefaultDirs = []string{
	".git", ".hg", ".svn",
	".venv", "venv",
	"__pycache__", ".mypy_cache", ".ruff_cache", ".pytest_cache",
	"node_modules", "dist", "build",
}

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (relative to project root, slash separated)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// DetectAutoExcludes scans the project root for dependency directories that
// should be excluded. Only marker files are trusted: a virtualenv is a
// directory holding pyvenv.cfg, and tool directories count only next to
// the file that creates them.
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	add := func(dir, reason string) {
		dir = filepath.ToSlash(dir)
		if !contains(result.Directories, dir) {
			result.Directories = append(result.Directories, dir)
			result.Reasons[dir] = reason
		}
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if d.IsDir() {
			// Skip anything already excluded or below an excluded directory
			for _, excluded := range result.Directories {
				if relSlash == excluded || strings.HasPrefix(relSlash, excluded+"/") {
					return filepath.SkipDir
				}
			}
			if contains(DefaultDirs, d.Name()) {
				return filepath.SkipDir
			}
			if strings.HasSuffix(d.Name(), ".egg-info") {
				add(relPath, "Python package metadata (*.egg-info)")
				return filepath.SkipDir
			}
			return nil
		}

		relDir := filepath.Dir(relPath)
		sibling := func(name string) string {
			if relDir == "." {
				return name
			}
			return filepath.Join(relDir, name)
		}

		switch d.Name() {
		case "pyvenv.cfg":
			// The directory containing pyvenv.cfg is the venv
			add(relDir, "Python virtual environment (pyvenv.cfg detected)")

		case "tox.ini":
			if dir := sibling(".tox"); dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "tox environments (tox.ini detected)")
			}

		case "noxfile.py":
			if dir := sibling(".nox"); dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "nox sessions (noxfile.py detected)")
			}

		case "setup.py":
			if dir := sibling(".eggs"); dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "setuptools eggs (setup.py detected)")
			}

		case "pyproject.toml":
			if dir := sibling("__pypackages__"); dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "PEP 582 packages (pyproject.toml detected)")
			}

		case "package.json":
			if dir := sibling("node_modules"); dirExists(filepath.Join(projectRoot, dir)) {
				add(dir, "Node.js dependencies (package.json detected)")
			}
		}

		return nil
	})

	return result
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// contains checks if a string is in a slice.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
