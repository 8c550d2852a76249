// Package privacyfilter implements the discovery-time policy object
// consulted once per walk entry: default exclusions plus any .gitignore
// patterns accumulated along the way.
package privacyfilter

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/localsearch/filesearch/internal/core/ports/driven"
)

var _ driven.PrivacyFilter = (*Filter)(nil)

// DefaultExcludes is the built-in denylist, consulted before any
// .gitignore pattern.
func DefaultExcludes() []string {
	return []string{
		".git", ".ssh", ".gnupg", "node_modules", "target",
		"passwords/", "*.key", "*.pem",
	}
}

// Filter is a glob-pattern denylist that grows as LoadGitignore discovers
// .gitignore files during a walk. It is safe for concurrent use.
type Filter struct {
	mu          sync.Mutex
	defaults    []string
	dirPatterns map[string][]string // directory -> patterns from its .gitignore
}

// New builds a Filter seeded with excludes (DefaultExcludes if nil).
func New(excludes []string) *Filter {
	if excludes == nil {
		excludes = DefaultExcludes()
	}
	return &Filter{
		defaults:    excludes,
		dirPatterns: make(map[string][]string),
	}
}

// ShouldIndex implements driven.PrivacyFilter. It checks the default
// excludes against path's base name, then walks path's ancestor
// directories looking for patterns loaded from a .gitignore encountered
// there.
func (f *Filter) ShouldIndex(path string, isDir bool) bool {
	for _, pat := range f.defaults {
		if matches(pat, path, isDir) {
			return false
		}
	}

	dir := filepath.Dir(path)
	for {
		f.mu.Lock()
		pats := f.dirPatterns[dir]
		f.mu.Unlock()
		for _, pat := range pats {
			if matches(pat, path, isDir) {
				return false
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return true
}

// LoadGitignore reads dir/.gitignore if present and registers its
// patterns so ShouldIndex applies them to every descendant of dir for
// the rest of the walk. Missing files are silently ignored; this is
// called speculatively on every directory visited.
func (f *Filter) LoadGitignore(dir string) {
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return
	}

	f.mu.Lock()
	f.dirPatterns[dir] = patterns
	f.mu.Unlock()
}

// matches implements the literal-segment + single-level "*" subset of
// gitignore pattern matching: a trailing "/" restricts the pattern to
// directories, a leading "**/" matches at any depth, and a pattern
// containing "/" matches the full path rather than just its base name.
func matches(pattern, path string, isDir bool) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return false
	}

	dirOnly := strings.HasSuffix(pattern, "/")
	if dirOnly {
		pattern = strings.TrimSuffix(pattern, "/")
		if !isDir {
			return false
		}
	}
	pattern = strings.TrimPrefix(pattern, "**/")

	if strings.Contains(pattern, "/") {
		ok, _ := filepath.Match(pattern, path)
		return ok
	}
	ok, _ := filepath.Match(pattern, filepath.Base(path))
	return ok
}
