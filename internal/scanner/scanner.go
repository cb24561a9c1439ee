// Package scanner finds candidate source files under a project root.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"culprit/pkg/config"
)

// Searcher is the filesystem search gateway used by the file resolver.
type Searcher interface {
	// FindByName returns all files named filename under root, in
	// deterministic walk order. The match is exact and case-sensitive
	// per the host filesystem.
	FindByName(root, filename string) ([]string, error)
}

// Scanner walks a directory tree applying config and .gitignore exclusions.
// Safe for concurrent use; a single Scanner is shared by parallel searches.
type Scanner struct {
	cfg           *config.Config
	gitignoreOnce sync.Once
	matchers      []gitignore.Matcher
}

// New creates a new file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{cfg: cfg}
}

// findGitRoot finds the root of the git repository by looking for a .git
// directory. Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads .gitignore patterns below the repository root. The
// sync.Once both guarantees a single load and publishes matchers to every
// goroutine that searches afterwards.
func (s *Scanner) loadGitignore(root string) {
	s.gitignoreOnce.Do(func() {
		if !s.cfg.Exclude.Gitignore {
			return
		}
		gitRoot := findGitRoot(root)
		if gitRoot == "" {
			return
		}
		fsys := osfs.New(gitRoot)
		if patterns, err := gitignore.ReadPatterns(fsys, nil); err == nil && len(patterns) > 0 {
			s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
		}
	})
}

// isExcluded checks whether a relative path matches any exclusion.
func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	base := filepath.Base(relPath)
	if isDir {
		for _, dir := range s.cfg.Exclude.Dirs {
			if base == dir {
				return true
			}
		}
	}

	slashPath := filepath.ToSlash(relPath)
	for _, pattern := range s.cfg.Exclude.Patterns {
		if matched, err := doublestar.Match(pattern, slashPath); err == nil && matched {
			return true
		}
	}

	if len(s.matchers) > 0 {
		parts := strings.Split(relPath, string(filepath.Separator))
		for _, m := range s.matchers {
			if m.Match(parts, isDir) {
				return true
			}
		}
	}
	return false
}

// FindByName recursively searches root for files whose base name equals
// filename. Walk order is lexical, so repeated searches over the same tree
// return candidates in a stable order.
func (s *Scanner) FindByName(root, filename string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	s.loadGitignore(root)

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil || relPath == "." {
			return nil
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(relPath, false) {
			return nil
		}
		if d.Name() == filename {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
