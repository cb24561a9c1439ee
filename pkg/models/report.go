package models

import "time"

// AnalysisResult aggregates everything learned about a single stack frame.
// It is created once by the pipeline and never mutated afterwards.
type AnalysisResult struct {
	Frame    StackFrame       `json:"frame"`
	Location ResolvedLocation `json:"location"`
	// Commits is ordered newest first and already filtered to the
	// retention window.
	Commits []CommitRecord `json:"commits,omitempty"`
	// Error carries a human-readable message when this frame's pipeline
	// failed; other frames are unaffected.
	Error string `json:"error,omitempty"`
}

// HasInRangeChanges reports whether any surfaced commit falls on or after
// the analysis start date.
func (r AnalysisResult) HasInRangeChanges() bool {
	for _, c := range r.Commits {
		if c.InDateRange {
			return true
		}
	}
	return false
}

// ReportSummary holds aggregate counts over a report's results. All fields
// are pure reductions over the result list.
type ReportSummary struct {
	TotalFrames       int `json:"total_frames"`
	FilesFound        int `json:"files_found"`
	MethodsFound      int `json:"methods_found"`
	FramesWithChanges int `json:"frames_with_changes"`
	TotalCommits      int `json:"total_commits"`
	InRangeCommits    int `json:"in_range_commits"`
}

// Report is the unit returned to the caller for one analysis run.
type Report struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	StartDate      time.Time        `json:"start_date"`
	RepositoryRoot string           `json:"repository_root"`
	Results        []AnalysisResult `json:"results"`
	Summary        ReportSummary    `json:"summary"`
}

// CalculateSummary recomputes the aggregate counts from the result list.
func (r *Report) CalculateSummary() {
	s := ReportSummary{TotalFrames: len(r.Results)}
	for _, res := range r.Results {
		if res.Location.Found {
			s.FilesFound++
		}
		if res.Location.MethodFound() {
			s.MethodsFound++
		}
		if res.HasInRangeChanges() {
			s.FramesWithChanges++
		}
		s.TotalCommits += len(res.Commits)
		for _, c := range res.Commits {
			if c.InDateRange {
				s.InRangeCommits++
			}
		}
	}
	r.Summary = s
}
