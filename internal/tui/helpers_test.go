package tui

import (
	"testing"
	"time"

	"github.com/scribedesk/scribe/pkg/domain"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo wörld", 4, "hél…"},
		{"hello", 0, ""},
	}
	for _, tc := range tests {
		if got := truncStr(tc.in, tc.max); got != tc.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateToHeight(t *testing.T) {
	if got := truncateToHeight("a\nb\nc\n", 2); got != "a\nb\n" {
		t.Errorf("got %q", got)
	}
	if got := truncateToHeight("a\nb", 0); got != "a\nb" {
		t.Errorf("got %q", got)
	}
}

func TestFormatProgress(t *testing.T) {
	p := 0.42
	if got := formatProgress(domain.Job{Status: &domain.JobStatus{Progress: &p}}); got != " 42%" {
		t.Errorf("formatProgress = %q", got)
	}
	if got := formatProgress(domain.Job{}); got != "" {
		t.Errorf("expected empty progress without status, got %q", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Minute, "expired"},
		{0, "expired"},
		{30 * time.Minute, "30m"},
		{5 * time.Hour, "5h"},
		{72 * time.Hour, "3d"},
	}
	for _, tc := range tests {
		if got := formatRemaining(tc.d); got != tc.want {
			t.Errorf("formatRemaining(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
