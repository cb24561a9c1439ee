// Package vcs provides the source-control gateway used by the history
// analyzer. The real implementation wraps go-git; a fake lives alongside for
// deterministic tests.
package vcs

import (
	"context"
	"time"
)

// BlameLine is the per-line attribution for one source line.
type BlameLine struct {
	// Hash is the full hex hash of the commit that last touched the line.
	Hash string
	// Author is the author email.
	Author string
	// AuthorName is the author display name.
	AuthorName string
	// Date is the author timestamp.
	Date time.Time
	// Text is the line content at HEAD.
	Text string
}

// CommitInfo is the commit metadata consumed by history extraction.
type CommitInfo struct {
	Hash       string
	Author     string
	AuthorName string
	Date       time.Time
	Message    string
}

// LogOptions configures a commit log query.
type LogOptions struct {
	// Since restricts the log to commits at or after this time.
	Since *time.Time
	// Path restricts the log to commits touching this repo-relative path.
	Path string
}

// CommitIterator iterates over commits.
type CommitIterator interface {
	ForEach(fn func(CommitInfo) error) error
	Close()
}

// Repository provides the history queries the analyzer needs. All paths are
// relative to Root, which may differ from the path the repository was opened
// with when .git was detected in a parent directory.
type Repository interface {
	// Root returns the absolute worktree root, or "" when it cannot be
	// determined (e.g. a bare repository).
	Root() string
	// BlameLines returns per-line commit attribution for a repo-relative
	// file path at HEAD.
	BlameLines(ctx context.Context, path string) ([]BlameLine, error)
	// CommitMessage returns the full message for a commit hash.
	CommitMessage(ctx context.Context, hash string) (string, error)
	// Log returns an iterator over commits matching opts, newest first.
	// The iterator stops with ctx.Err() once ctx is done.
	Log(ctx context.Context, opts *LogOptions) (CommitIterator, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in
	// parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
