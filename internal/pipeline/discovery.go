package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds source files under a root directory using include and ignore globs.
type Discovery struct {
	rootDir        string
	includePattern []compiledPattern
	ignorePatterns []compiledPattern
}

// NewDiscovery compiles the patterns. Patterns use '/' as the separator and are
// matched against paths relative to rootDir.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	var err error
	if d.includePattern, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignore); err != nil {
		return nil, err
	}

	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Discover walks the tree and returns matching files sorted by path.
func (d *Discovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(d.rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && d.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.shouldIgnore(relPath) {
			return nil
		}

		if d.Matches(relPath) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether a slash-separated relative path is included and not ignored.
func (d *Discovery) Matches(relPath string) bool {
	return !d.shouldIgnore(relPath) && matchesAnyPattern(relPath, d.includePattern)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (d *Discovery) shouldIgnore(relPath string) bool {
	// Always ignore the tool's own directory
	if strings.HasPrefix(relPath, ".testforge/") || relPath == ".testforge" {
		return true
	}

	// Ignore patterns apply to the file name as well, so "test_*.py" skips nested tests.
	base := relPath
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		base = relPath[i+1:]
	}

	// A directory such as "pkg/__pycache__" also matches pattern "__pycache__/**".
	for _, candidate := range []string{relPath, base, relPath + "/**", base + "/**"} {
		if matchesAnyPattern(candidate, d.ignorePatterns) {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level path also matches patterns with the leading **/ removed, so
	// "**/*.py" matches both "app.py" and "pkg/app.py".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
