// Package history extracts and classifies commit history for a file span
// through the source-control gateway.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"culprit/internal/progress"
	"culprit/internal/vcs"
	"culprit/pkg/config"
	"culprit/pkg/models"
)

// Analyzer turns per-line blame attribution or commit logs into classified
// commit records. Gateway failures never propagate: the analyzer yields an
// empty sequence and notes the failure on the step recorder, so a missing
// repository looks like "no history" to the caller.
type Analyzer struct {
	opener        vcs.Opener
	links         config.LinkConfig
	retentionDays int
	now           func() time.Time
	recorder      *progress.Recorder
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithOpener sets the source-control gateway (useful for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(a *Analyzer) {
		a.opener = opener
	}
}

// WithLinks sets the pull-request URL templates.
func WithLinks(links config.LinkConfig) Option {
	return func(a *Analyzer) {
		a.links = links
	}
}

// WithRetentionDays sets the trailing retention window.
func WithRetentionDays(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.retentionDays = days
		}
	}
}

// WithNow sets the clock used for the retention window (useful for testing).
func WithNow(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// WithRecorder sets the step recorder that receives tool-failure notes.
func WithRecorder(r *progress.Recorder) Option {
	return func(a *Analyzer) {
		a.recorder = r
	}
}

// NewAnalyzer creates a history analyzer with default settings.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		opener:        vcs.DefaultOpener(),
		links:         config.DefaultConfig().Links,
		retentionDays: 365,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeSpan returns classified commits attributed to the given line span
// of filePath, newest first. A zero span analyzes the whole file.
func (a *Analyzer) AnalyzeSpan(ctx context.Context, root, filePath string, span models.LineSpan, since time.Time) []models.CommitRecord {
	repo, err := a.opener.PlainOpenWithDetect(root)
	if err != nil {
		a.note("history: open %s: %v", root, err)
		return nil
	}

	relPath := relativize(repoBase(repo, root), filePath)
	lines, err := repo.BlameLines(ctx, relPath)
	if err != nil {
		a.note("history: blame %s: %v", relPath, err)
		return nil
	}

	// Restrict to the method's span. Blame lines are 1-based.
	if span.Start > 0 {
		start := span.Start - 1
		end := span.End
		if start >= len(lines) {
			return nil
		}
		if end > len(lines) {
			end = len(lines)
		}
		lines = lines[start:end]
	}

	var records []models.CommitRecord
	seen := make(map[string]bool)
	for _, line := range lines {
		// Blame repeats commit metadata per attributed line; the first
		// occurrence of a hash wins.
		if seen[line.Hash] {
			continue
		}
		seen[line.Hash] = true

		if err := ctx.Err(); err != nil {
			a.note("history: canceled during %s: %v", relPath, err)
			return nil
		}
		message, err := repo.CommitMessage(ctx, line.Hash)
		if err != nil {
			a.note("history: message %s: %v", line.Hash, err)
		}
		author := line.AuthorName
		if author == "" {
			author = line.Author
		}
		records = append(records, a.buildRecord(line.Hash, author, line.Date, message, since))
	}

	return a.finalize(records)
}

// AnalyzeFile returns classified commits touching filePath, newest first.
// This is the log-based query shape used when no line span is available; it
// avoids per-line attribution entirely.
func (a *Analyzer) AnalyzeFile(ctx context.Context, root, filePath string, since time.Time) []models.CommitRecord {
	repo, err := a.opener.PlainOpenWithDetect(root)
	if err != nil {
		a.note("history: open %s: %v", root, err)
		return nil
	}

	// Commits older than the retention window are discarded anyway, so
	// bound the log walk at the cutoff.
	cutoff := a.retentionCutoff()
	iter, err := repo.Log(ctx, &vcs.LogOptions{
		Since: &cutoff,
		Path:  relativize(repoBase(repo, root), filePath),
	})
	if err != nil {
		a.note("history: log %s: %v", filePath, err)
		return nil
	}
	defer iter.Close()

	var records []models.CommitRecord
	seen := make(map[string]bool)
	err = iter.ForEach(func(c vcs.CommitInfo) error {
		if seen[c.Hash] {
			return nil
		}
		seen[c.Hash] = true
		author := c.AuthorName
		if author == "" {
			author = c.Author
		}
		records = append(records, a.buildRecord(c.Hash, author, c.Date, c.Message, since))
		return nil
	})
	if err != nil {
		a.note("history: log walk %s: %v", filePath, err)
		return nil
	}

	return a.finalize(records)
}

// buildRecord classifies a commit against the date range and retention
// window and extracts any pull-request reference from its message.
func (a *Analyzer) buildRecord(hash, author string, date time.Time, message string, since time.Time) models.CommitRecord {
	day := models.DateOnly(date)
	record := models.CommitRecord{
		Hash:            hash,
		Author:          author,
		Date:            day,
		Message:         strings.TrimSpace(message),
		InDateRange:     !day.Before(models.DateOnly(since)),
		WithinRetention: !day.Before(a.retentionCutoff()),
	}

	if number, source, ok := ExtractPR(record.Message); ok {
		record.PRNumber = number
		record.PRSource = source
		record.Link = a.prLink(number, source)
	}
	return record
}

// prLink selects the URL template matching the PR source.
func (a *Analyzer) prLink(number string, source models.PRSource) string {
	switch source {
	case models.PRSourceAzure:
		return fmt.Sprintf(a.links.AzurePRURL, number)
	default:
		return fmt.Sprintf(a.links.GitHubPRURL, number)
	}
}

// finalize drops commits outside the retention window and orders the rest
// newest first, ties keeping discovery order.
func (a *Analyzer) finalize(records []models.CommitRecord) []models.CommitRecord {
	retained := records[:0]
	for _, r := range records {
		if r.WithinRetention {
			retained = append(retained, r)
		}
	}
	models.SortCommitsByDateDesc(retained)
	return retained
}

func (a *Analyzer) retentionCutoff() time.Time {
	return models.DateOnly(a.now()).AddDate(0, 0, -a.retentionDays)
}

func (a *Analyzer) note(format string, args ...any) {
	a.recorder.Record(format, args...)
}

// repoBase returns the directory blame/log paths are relative to: the
// repository's worktree root, which sits above the analysis root whenever
// .git was detected in a parent directory.
func repoBase(repo vcs.Repository, root string) string {
	if base := repo.Root(); base != "" {
		return base
	}
	return root
}

// relativize converts filePath to a repo-relative slash path.
func relativize(base, filePath string) string {
	rel, err := filepath.Rel(base, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filePath
	}
	return filepath.ToSlash(rel)
}
