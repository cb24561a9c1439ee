package vcs

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// PlainOpen opens an existing git repository.
func (o *GitOpener) PlainOpen(path string) (Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, err
	}
	return newGitRepository(repo), nil
}

// PlainOpenWithDetect opens a git repository, detecting .git in parent
// directories.
func (o *GitOpener) PlainOpenWithDetect(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return newGitRepository(repo), nil
}

// gitRepository wraps go-git Repository.
type gitRepository struct {
	repo *git.Repository
	root string
}

func newGitRepository(repo *git.Repository) *gitRepository {
	root := ""
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &gitRepository{repo: repo, root: root}
}

func (r *gitRepository) Root() string {
	return r.root
}

func (r *gitRepository) headCommit() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	return r.repo.CommitObject(head.Hash())
}

// BlameLines runs blame at HEAD. go-git's blame has no context variant, so a
// single pass runs to completion; ctx is observed between gateway calls.
func (r *gitRepository) BlameLines(ctx context.Context, path string) ([]BlameLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	commit, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	blame, err := git.Blame(commit, path)
	if err != nil {
		return nil, err
	}
	lines := make([]BlameLine, len(blame.Lines))
	for i, line := range blame.Lines {
		lines[i] = BlameLine{
			Hash:       line.Hash.String(),
			Author:     line.Author,
			AuthorName: line.AuthorName,
			Date:       line.Date,
			Text:       line.Text,
		}
	}
	return lines, nil
}

func (r *gitRepository) CommitMessage(ctx context.Context, hash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

func (r *gitRepository) Log(ctx context.Context, opts *LogOptions) (CommitIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gitOpts := &git.LogOptions{}
	if opts != nil {
		if opts.Since != nil {
			gitOpts.Since = opts.Since
		}
		if opts.Path != "" {
			target := opts.Path
			gitOpts.PathFilter = func(p string) bool {
				return p == target
			}
		}
	}
	iter, err := r.repo.Log(gitOpts)
	if err != nil {
		return nil, err
	}
	return &gitCommitIterator{ctx: ctx, iter: iter}, nil
}

// gitCommitIterator wraps go-git CommitIter.
type gitCommitIterator struct {
	ctx  context.Context
	iter object.CommitIter
}

func (i *gitCommitIterator) ForEach(fn func(CommitInfo) error) error {
	return i.iter.ForEach(func(c *object.Commit) error {
		if err := i.ctx.Err(); err != nil {
			return err
		}
		return fn(CommitInfo{
			Hash:       c.Hash.String(),
			Author:     c.Author.Email,
			AuthorName: c.Author.Name,
			Date:       c.Author.When,
			Message:    c.Message,
		})
	})
}

func (i *gitCommitIterator) Close() {
	i.iter.Close()
}

// Default opener singleton
var defaultOpener Opener = NewGitOpener()

// DefaultOpener returns the default git opener.
func DefaultOpener() Opener {
	return defaultOpener
}

// SetDefaultOpener sets the default git opener (useful for testing).
func SetDefaultOpener(opener Opener) {
	defaultOpener = opener
}
