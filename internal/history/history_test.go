package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"culprit/internal/progress"
	"culprit/internal/vcs"
	"culprit/pkg/config"
	"culprit/pkg/models"
)

var testNow = time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func newTestAnalyzer(repo *vcs.FakeRepository, opts ...Option) *Analyzer {
	opener := vcs.NewFakeOpener()
	opener.Add("/repo", repo)
	base := []Option{
		WithOpener(opener),
		WithNow(func() time.Time { return testNow }),
	}
	return NewAnalyzer(append(base, opts...)...)
}

func TestAnalyzeSpan_DeduplicatesByHash(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "aaa", AuthorName: "Alice", Date: day(-10), Text: "void Submit()"},
				{Hash: "aaa", AuthorName: "Someone Else", Date: day(-10), Text: "{"},
				{Hash: "bbb", AuthorName: "Bob", Date: day(-5), Text: "    Validate();"},
				{Hash: "aaa", AuthorName: "Alice", Date: day(-10), Text: "}"},
			},
		},
		Messages: map[string]string{
			"aaa": "Initial service",
			"bbb": "Add validation",
		},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, day(-30))

	require.Len(t, commits, 2)
	// Newest first.
	assert.Equal(t, "bbb", commits[0].Hash)
	assert.Equal(t, "aaa", commits[1].Hash)
	// First-seen metadata wins for the repeated hash.
	assert.Equal(t, "Alice", commits[1].Author)
}

func TestAnalyzeSpan_RestrictsToSpan(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "aaa", AuthorName: "Alice", Date: day(-10), Text: "using System;"},
				{Hash: "bbb", AuthorName: "Bob", Date: day(-9), Text: "void Submit()"},
				{Hash: "bbb", AuthorName: "Bob", Date: day(-9), Text: "{"},
				{Hash: "ccc", AuthorName: "Carol", Date: day(-8), Text: "}"},
				{Hash: "ddd", AuthorName: "Dave", Date: day(-7), Text: "void Other()"},
			},
		},
		Messages: map[string]string{
			"aaa": "m", "bbb": "m", "ccc": "m", "ddd": "m",
		},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{Start: 2, End: 4}, day(-30))

	require.Len(t, commits, 2)
	hashes := []string{commits[0].Hash, commits[1].Hash}
	assert.NotContains(t, hashes, "aaa")
	assert.NotContains(t, hashes, "ddd")
}

func TestAnalyzeSpan_SpanClampedToFile(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "aaa", AuthorName: "Alice", Date: day(-10), Text: "void Submit() {}"},
			},
		},
		Messages: map[string]string{"aaa": "m"},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{Start: 1, End: 99}, day(-30))
	require.Len(t, commits, 1)

	commits = a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{Start: 50, End: 99}, day(-30))
	assert.Empty(t, commits)
}

func TestAnalyzeSpan_DateRangeBoundary(t *testing.T) {
	since := day(-10)
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				// Commit exactly on the start date, late in the day.
				{Hash: "on", AuthorName: "Alice", Date: time.Date(2026, 8, 14, 23, 59, 0, 0, time.UTC), Text: "a"},
				// Commit one day before the start date.
				{Hash: "before", AuthorName: "Bob", Date: day(-11), Text: "b"},
			},
		},
		Messages: map[string]string{"on": "m", "before": "m"},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, since)

	require.Len(t, commits, 2)
	byHash := map[string]models.CommitRecord{}
	for _, c := range commits {
		byHash[c.Hash] = c
	}
	assert.True(t, byHash["on"].InDateRange, "commit dated exactly on startDate must be in range")
	assert.False(t, byHash["before"].InDateRange, "commit one day before startDate must be out of range")
}

func TestAnalyzeSpan_RetentionWindow(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "old", AuthorName: "Alice", Date: day(-366), Text: "a"},
				{Hash: "edge", AuthorName: "Bob", Date: day(-365), Text: "b"},
				{Hash: "fresh", AuthorName: "Carol", Date: day(-1), Text: "c"},
			},
		},
		Messages: map[string]string{"old": "m", "edge": "m", "fresh": "m"},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, day(-400))

	require.Len(t, commits, 2, "the 366-day-old commit must be dropped")
	assert.Equal(t, "fresh", commits[0].Hash)
	assert.Equal(t, "edge", commits[1].Hash)
	for _, c := range commits {
		assert.True(t, c.WithinRetention)
	}
}

func TestAnalyzeSpan_SortsNewestFirstTiesByDiscovery(t *testing.T) {
	sameDay := day(-3)
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "first", AuthorName: "Alice", Date: sameDay, Text: "a"},
				{Hash: "older", AuthorName: "Bob", Date: day(-20), Text: "b"},
				{Hash: "second", AuthorName: "Carol", Date: sameDay.Add(4 * time.Hour), Text: "c"},
				{Hash: "newest", AuthorName: "Dave", Date: day(-1), Text: "d"},
			},
		},
		Messages: map[string]string{"first": "m", "older": "m", "second": "m", "newest": "m"},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, day(-30))

	require.Len(t, commits, 4)
	// Dates compare at day granularity, so "first" and "second" tie and
	// keep discovery order.
	assert.Equal(t, "newest", commits[0].Hash)
	assert.Equal(t, "first", commits[1].Hash)
	assert.Equal(t, "second", commits[2].Hash)
	assert.Equal(t, "older", commits[3].Hash)
}

func TestAnalyzeSpan_PRLinkTemplates(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "gh", AuthorName: "Alice", Date: day(-2), Text: "a"},
				{Hash: "az", AuthorName: "Bob", Date: day(-3), Text: "b"},
				{Hash: "none", AuthorName: "Carol", Date: day(-4), Text: "c"},
			},
		},
		Messages: map[string]string{
			"gh":   "Fix rounding (#42)",
			"az":   "Fix rounding (PR 1532)",
			"none": "Refactor helpers",
		},
	}

	a := newTestAnalyzer(repo, WithLinks(config.LinkConfig{
		GitHubPRURL: "https://github.com/acme/shop/pull/%s",
		AzurePRURL:  "https://dev.azure.com/acme/shop/_git/shop/pullrequest/%s",
	}))
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, day(-30))

	require.Len(t, commits, 3)
	byHash := map[string]models.CommitRecord{}
	for _, c := range commits {
		byHash[c.Hash] = c
	}

	assert.Equal(t, "42", byHash["gh"].PRNumber)
	assert.Equal(t, models.PRSourceGitHub, byHash["gh"].PRSource)
	assert.Equal(t, "https://github.com/acme/shop/pull/42", byHash["gh"].Link)

	assert.Equal(t, "1532", byHash["az"].PRNumber)
	assert.Equal(t, models.PRSourceAzure, byHash["az"].PRSource)
	assert.Equal(t, "https://dev.azure.com/acme/shop/_git/shop/pullrequest/1532", byHash["az"].Link)

	assert.Empty(t, byHash["none"].PRNumber)
	assert.Empty(t, byHash["none"].PRSource)
	assert.Empty(t, byHash["none"].Link)
}

func TestAnalyzeSpan_OpenFailureYieldsEmpty(t *testing.T) {
	a := NewAnalyzer(
		WithOpener(vcs.NewFakeOpener()),
		WithNow(func() time.Time { return testNow }),
	)

	commits := a.AnalyzeSpan(context.Background(), "/missing", "/missing/Service.cs", models.LineSpan{}, day(-30))
	assert.Empty(t, commits)
}

func TestAnalyzeSpan_RootBelowWorktree(t *testing.T) {
	// Opening with .git detection lands on the repository above the
	// analysis root; blame paths must be relative to the worktree root,
	// not the search root.
	repo := &vcs.FakeRepository{
		WorktreeRoot: "/repo",
		Lines: map[string][]vcs.BlameLine{
			"src/App/Service.cs": {
				{Hash: "aaa", AuthorName: "Alice", Date: day(-3), Text: "void Submit() {}"},
			},
		},
		Messages: map[string]string{"aaa": "Initial service"},
	}
	opener := vcs.NewFakeOpener()
	opener.Add("/repo/src", repo)

	a := NewAnalyzer(
		WithOpener(opener),
		WithNow(func() time.Time { return testNow }),
	)
	commits := a.AnalyzeSpan(context.Background(), "/repo/src", "/repo/src/App/Service.cs", models.LineSpan{Start: 1, End: 1}, day(-30))

	require.Len(t, commits, 1)
	assert.Equal(t, "aaa", commits[0].Hash)
}

func TestAnalyzeSpan_CanceledContext(t *testing.T) {
	repo := &vcs.FakeRepository{
		Lines: map[string][]vcs.BlameLine{
			"Service.cs": {
				{Hash: "aaa", AuthorName: "Alice", Date: day(-3), Text: "a"},
			},
		},
		Messages: map[string]string{"aaa": "m"},
	}
	rec := progress.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAnalyzer(repo, WithRecorder(rec))
	commits := a.AnalyzeSpan(ctx, "/repo", "/repo/Service.cs", models.LineSpan{}, day(-30))

	assert.Empty(t, commits)
	require.NotEmpty(t, rec.Steps())
}

func TestAnalyzeSpan_BlameFailureYieldsEmptyAndRecords(t *testing.T) {
	repo := &vcs.FakeRepository{Err: errors.New("index locked")}
	rec := progress.NewRecorder()

	a := newTestAnalyzer(repo, WithRecorder(rec))
	commits := a.AnalyzeSpan(context.Background(), "/repo", "/repo/Service.cs", models.LineSpan{}, day(-30))

	assert.Empty(t, commits)
	require.NotEmpty(t, rec.Steps(), "tool failure must be noted on the step recorder")
	assert.Contains(t, rec.Steps()[0].Message, "index locked")
}

func TestAnalyzeFile_UsesLog(t *testing.T) {
	repo := &vcs.FakeRepository{
		PathCommits: map[string][]vcs.CommitInfo{
			"Service.cs": {
				{Hash: "bbb", AuthorName: "Bob", Date: day(-2), Message: "Add validation (#7)"},
				{Hash: "aaa", AuthorName: "Alice", Date: day(-9), Message: "Initial service"},
			},
		},
	}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeFile(context.Background(), "/repo", "/repo/Service.cs", day(-5))

	require.Len(t, commits, 2)
	assert.Equal(t, "bbb", commits[0].Hash)
	assert.True(t, commits[0].InDateRange)
	assert.Equal(t, "7", commits[0].PRNumber)
	assert.False(t, commits[1].InDateRange)
}

func TestAnalyzeFile_LogFailureYieldsEmpty(t *testing.T) {
	repo := &vcs.FakeRepository{Err: errors.New("not a repository")}

	a := newTestAnalyzer(repo)
	commits := a.AnalyzeFile(context.Background(), "/repo", "/repo/Service.cs", day(-5))
	assert.Empty(t, commits)
}
