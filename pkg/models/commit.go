package models

import (
	"sort"
	"time"
)

// PRSource identifies the pull-request host a reference was extracted from.
type PRSource string

const (
	PRSourceGitHub PRSource = "github"
	PRSourceAzure  PRSource = "azure"
)

func (s PRSource) String() string { return string(s) }

// CommitRecord is one commit surfaced by the history analysis. Within a
// single analysis each hash appears at most once; first-seen metadata wins.
type CommitRecord struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
	// PRNumber is empty when no pull-request reference was found in the
	// message. PRSource and Link are empty whenever PRNumber is.
	PRNumber string   `json:"pr_number,omitempty"`
	PRSource PRSource `json:"pr_source,omitempty"`
	Link     string   `json:"link,omitempty"`
	// InDateRange is true when the commit date is on or after the
	// user-supplied start date, compared at day granularity.
	InDateRange bool `json:"in_date_range"`
	// WithinRetention is true when the commit date falls inside the
	// trailing one-year retention window.
	WithinRetention bool `json:"within_retention"`
}

// ShortHash returns the abbreviated commit hash for display.
func (c CommitRecord) ShortHash() string {
	if len(c.Hash) > 8 {
		return c.Hash[:8]
	}
	return c.Hash
}

// DateOnly truncates a timestamp to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortCommitsByDateDesc orders commits newest first. The sort is stable so
// same-day commits keep their discovery order.
func SortCommitsByDateDesc(commits []CommitRecord) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Date.After(commits[j].Date)
	})
}
