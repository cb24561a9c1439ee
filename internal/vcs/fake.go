package vcs

import (
	"context"
	"errors"
)

// ErrNoRepository is returned by the fake opener for unknown paths.
var ErrNoRepository = errors.New("repository does not exist")

// FakeOpener serves in-memory repositories keyed by path.
type FakeOpener struct {
	Repos map[string]*FakeRepository
}

// NewFakeOpener creates a fake opener with no repositories.
func NewFakeOpener() *FakeOpener {
	return &FakeOpener{Repos: make(map[string]*FakeRepository)}
}

// Add registers an in-memory repository at path.
func (o *FakeOpener) Add(path string, repo *FakeRepository) {
	o.Repos[path] = repo
}

func (o *FakeOpener) PlainOpen(path string) (Repository, error) {
	repo, ok := o.Repos[path]
	if !ok {
		return nil, ErrNoRepository
	}
	return repo, nil
}

func (o *FakeOpener) PlainOpenWithDetect(path string) (Repository, error) {
	return o.PlainOpen(path)
}

// FakeRepository is an in-memory Repository for tests.
type FakeRepository struct {
	// WorktreeRoot is what Root reports; empty mimics a bare repository.
	WorktreeRoot string
	// Lines maps repo-relative file paths to blame lines.
	Lines map[string][]BlameLine
	// Messages maps commit hashes to full commit messages.
	Messages map[string]string
	// Commits is the log, newest first, returned for any path unless
	// PathCommits has an entry.
	Commits []CommitInfo
	// PathCommits overrides Commits per path.
	PathCommits map[string][]CommitInfo
	// Err, when set, fails every query.
	Err error
}

func (r *FakeRepository) Root() string {
	return r.WorktreeRoot
}

func (r *FakeRepository) BlameLines(ctx context.Context, path string) ([]BlameLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	lines, ok := r.Lines[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return lines, nil
}

func (r *FakeRepository) CommitMessage(ctx context.Context, hash string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	msg, ok := r.Messages[hash]
	if !ok {
		return "", errors.New("object not found: " + hash)
	}
	return msg, nil
}

func (r *FakeRepository) Log(ctx context.Context, opts *LogOptions) (CommitIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	commits := r.Commits
	if opts != nil && opts.Path != "" {
		if pc, ok := r.PathCommits[opts.Path]; ok {
			commits = pc
		}
	}
	if opts != nil && opts.Since != nil {
		var filtered []CommitInfo
		for _, c := range commits {
			if !c.Date.Before(*opts.Since) {
				filtered = append(filtered, c)
			}
		}
		commits = filtered
	}
	return &fakeIterator{ctx: ctx, commits: commits}, nil
}

type fakeIterator struct {
	ctx     context.Context
	commits []CommitInfo
}

func (i *fakeIterator) ForEach(fn func(CommitInfo) error) error {
	for _, c := range i.commits {
		if err := i.ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (i *fakeIterator) Close() {}
