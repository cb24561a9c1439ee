// Package analyzer orchestrates the per-frame pipeline: parse the trace,
// resolve each frame to a source file, locate the method span, and extract
// classified commit history for it.
package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"

	"culprit/internal/history"
	"culprit/internal/method"
	"culprit/internal/progress"
	"culprit/internal/resolver"
	"culprit/internal/scanner"
	"culprit/internal/trace"
	"culprit/internal/vcs"
	"culprit/pkg/config"
	"culprit/pkg/models"
)

// Guidance messages surfaced on recoverable per-frame failures.
const (
	msgFileNotFound   = "no source file found; manually verify in codebase"
	msgMethodNotFound = "method not found in file; may be defined in interface or base class"
)

// TraceAnalyzer runs the full analysis pipeline for a stack trace.
type TraceAnalyzer struct {
	cfg    *config.Config
	opener vcs.Opener

	onFrames func(total int) func()
}

// Option is a functional option for configuring TraceAnalyzer.
type Option func(*TraceAnalyzer)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *TraceAnalyzer) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithOpener sets the source-control gateway (useful for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(a *TraceAnalyzer) {
		a.opener = opener
	}
}

// WithFrameProgress sets a callback invoked with the frame count once
// parsing succeeds; the tick function it returns is called after each frame
// completes and must be safe for concurrent use.
func WithFrameProgress(fn func(total int) func()) Option {
	return func(a *TraceAnalyzer) {
		a.onFrames = fn
	}
}

// New creates a trace analyzer.
func New(opts ...Option) *TraceAnalyzer {
	a := &TraceAnalyzer{
		cfg:    config.LoadOrDefault(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the pipeline over every frame in traceText against the
// repository at root. The recorder, when non-nil, receives step records for
// the whole run; each run must use its own recorder. Returns
// trace.ErrNoFrames when the trace has no actionable entries.
func (a *TraceAnalyzer) Analyze(ctx context.Context, traceText string, since time.Time, root string, rec *progress.Recorder) (*models.Report, error) {
	parser := trace.NewParser(
		trace.WithMarkers(a.cfg.Trace.Markers),
		trace.WithNoisePrefixes(a.cfg.Trace.NoisePrefixes),
	)
	frames, err := parser.Parse(traceText)
	if err != nil {
		return nil, err
	}
	rec.Record("parsed %d frame(s) from trace", len(frames))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	res := resolver.New(
		resolver.WithExtension(a.cfg.Source.Extension),
		resolver.WithSearcher(scanner.New(a.cfg)),
	)
	hist := history.NewAnalyzer(
		history.WithOpener(a.opener),
		history.WithLinks(a.cfg.Links),
		history.WithRetentionDays(a.cfg.History.RetentionDays),
		history.WithRecorder(rec),
	)

	var tick func()
	if a.onFrames != nil {
		tick = a.onFrames(len(frames))
	}

	results := make([]models.AnalysisResult, len(frames))
	workers := a.cfg.Analysis.Workers
	if workers <= 1 {
		for i, frame := range frames {
			results[i] = a.analyzeFrame(ctx, frame, since, absRoot, res, hist, rec)
			if tick != nil {
				tick()
			}
		}
	} else {
		// Bounded fan-out across independent frames. Each worker writes
		// its own slot, so results stay in original frame order; every
		// history query opens its own repository handle.
		p := pool.New().WithMaxGoroutines(workers)
		for i, frame := range frames {
			p.Go(func() {
				results[i] = a.analyzeFrame(ctx, frame, since, absRoot, res, hist, rec)
				if tick != nil {
					tick()
				}
			})
		}
		p.Wait()
	}

	report := &models.Report{
		GeneratedAt:    time.Now().UTC(),
		StartDate:      models.DateOnly(since),
		RepositoryRoot: absRoot,
		Results:        results,
	}
	report.CalculateSummary()
	rec.Record("analysis complete: %d/%d files, %d/%d methods",
		report.Summary.FilesFound, report.Summary.TotalFrames,
		report.Summary.MethodsFound, report.Summary.TotalFrames)
	return report, nil
}

// analyzeFrame runs resolve → locate → history for one frame. Any panic is
// contained here and recorded as the frame's error so one bad frame never
// aborts the batch.
func (a *TraceAnalyzer) analyzeFrame(ctx context.Context, frame models.StackFrame, since time.Time, root string, res *resolver.Resolver, hist *history.Analyzer, rec *progress.Recorder) (result models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("unexpected failure analyzing %s: %v", frame.Key(), r)
			rec.Record("%s", result.Error)
		}
	}()

	result = models.AnalysisResult{
		Frame: frame,
		Location: models.ResolvedLocation{
			Namespace: frame.Namespace,
			Method:    frame.Method,
		},
	}

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Sprintf("analysis canceled: %v", err)
		return result
	}

	path, ok := res.Resolve(root, frame.Namespace)
	if !ok {
		result.Error = msgFileNotFound
		rec.Record("frame %s: no file named %s%s found", frame.Key(), frame.ClassName(), a.cfg.Source.Extension)
		return result
	}
	result.Location.FilePath = path
	result.Location.Found = true
	rec.Record("frame %s: resolved to %s", frame.Key(), path)

	span, found, err := method.LocateInFile(path, frame.Method)
	if err != nil {
		result.Error = fmt.Sprintf("reading %s: %v", path, err)
		rec.Record("%s", result.Error)
		return result
	}
	if !found {
		result.Error = msgMethodNotFound
		rec.Record("frame %s: method %s not found in %s", frame.Key(), frame.Method, path)
		return result
	}
	result.Location.Span = &span
	rec.Record("frame %s: method spans lines %d-%d", frame.Key(), span.Start, span.End)

	result.Commits = hist.AnalyzeSpan(ctx, root, path, span, since)
	rec.Record("frame %s: %d commit(s) in retention window", frame.Key(), len(result.Commits))
	return result
}
