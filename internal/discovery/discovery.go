// Package discovery finds JavaScript and TypeScript sources under a project
// root using include and ignore glob patterns.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// configDir is always ignored.
const configDir = ".modelguard"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery handles file discovery with glob patterns and ignore rules.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
	}

	fd := &FileDiscovery{rootDir: absRoot}

	fd.includePatterns, err = compilePatterns(includePatterns)
	if err != nil {
		return nil, err
	}
	fd.ignorePatterns, err = compilePatterns(ignorePatterns)
	if err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// RootDir returns the absolute project root.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// DiscoverFiles walks the project root and returns matching source files,
// sorted by path.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	return fd.walk(fd.rootDir)
}

// Expand resolves command line arguments into source files. Directories are
// walked with the include and ignore rules; explicit files are kept as given
// unless ignored. Missing paths are an error.
func (fd *FileDiscovery) Expand(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return fd.DiscoverFiles()
	}

	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}

		var found []string
		if info.IsDir() {
			found, err = fd.walk(abs)
			if err != nil {
				return nil, err
			}
		} else if !fd.shouldIgnore(fd.relative(abs)) {
			found = []string{abs}
		}

		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether path (absolute, or relative to the root) is a
// source file that discovery would return.
func (fd *FileDiscovery) Matches(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(fd.rootDir, path)
	}
	relPath := fd.relative(path)
	if fd.shouldIgnore(relPath) {
		return false
	}
	return fd.matchesAnyPattern(relPath, fd.includePatterns)
}

// Ignored reports whether path (absolute, or relative to the root) falls under
// an ignore rule. Used to keep ignored directories out of the watch set.
func (fd *FileDiscovery) Ignored(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(fd.rootDir, path)
	}
	return fd.shouldIgnore(fd.relative(path))
}

func (fd *FileDiscovery) walk(dir string) ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Get relative path for pattern matching
		relPath := fd.relative(path)

		if d.IsDir() {
			if path != dir && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) {
			return nil
		}

		if fd.matchesAnyPattern(relPath, fd.includePatterns) {
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

// relative returns path relative to the root with forward slashes. Paths
// outside the root are returned as-is.
func (fd *FileDiscovery) relative(path string) string {
	relPath, err := filepath.Rel(fd.rootDir, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return filepath.ToSlash(path)
	}
	// Normalize path separators for glob matching
	return filepath.ToSlash(relPath)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore the config directory
	if strings.HasPrefix(relPath, configDir+"/") || relPath == configDir {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	pathWithSuffix := relPath + "/**"
	return fd.matchesAnyPattern(pathWithSuffix, fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.js" match both "index.js"
	// and "src/app.js" as users would expect.
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
