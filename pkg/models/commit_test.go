package models

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 8, 14, 23, 59, 58, 123, time.FixedZone("CEST", 2*3600))
	got := DateOnly(in)

	// 23:59 CEST is 21:59 UTC, still August 14.
	want := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly() = %v, want %v", got, want)
	}
}

func TestDateOnly_CrossesMidnightUTC(t *testing.T) {
	// 01:00 CEST on the 15th is 23:00 UTC on the 14th.
	in := time.Date(2026, 8, 15, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	want := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	if got := DateOnly(in); !got.Equal(want) {
		t.Errorf("DateOnly() = %v, want %v", got, want)
	}
}

func TestShortHash(t *testing.T) {
	tests := []struct {
		hash string
		want string
	}{
		{"0123456789abcdef0123456789abcdef01234567", "01234567"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		c := CommitRecord{Hash: tt.hash}
		if got := c.ShortHash(); got != tt.want {
			t.Errorf("ShortHash(%q) = %q, want %q", tt.hash, got, tt.want)
		}
	}
}

func TestSortCommitsByDateDesc(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}
	commits := []CommitRecord{
		{Hash: "a", Date: day(10)},
		{Hash: "b", Date: day(20)},
		{Hash: "c", Date: day(10)},
		{Hash: "d", Date: day(15)},
	}

	SortCommitsByDateDesc(commits)

	want := []string{"b", "d", "a", "c"}
	for i, w := range want {
		if commits[i].Hash != w {
			t.Errorf("commits[%d] = %q, want %q (same-day commits must keep order)", i, commits[i].Hash, w)
		}
	}
}
