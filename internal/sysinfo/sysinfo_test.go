package sysinfo

import (
	"context"
	"strings"
	"testing"
	"time"

	"relaybot/internal/domain"
	"relaybot/internal/storage"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{3 * time.Minute, "3m 0s"},
		{3*time.Minute + 12*time.Second, "3m 12s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{50 * time.Hour, "2d 2h 0m"},
		{-time.Second, "0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMark(t *testing.T) {
	if got := mark(true); !strings.Contains(got, "available") {
		t.Errorf("mark(true) = %q", got)
	}
	if got := mark(false); !strings.Contains(got, "missing") {
		t.Errorf("mark(false) = %q", got)
	}
}

func TestReport_IncludesQueueState(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	queue := domain.NewQueue()
	queue.Enqueue(domain.NewJob("https://example.com/a.mp4", domain.Submitter{}))

	r := NewReporter(store, queue, nil)
	r.pingTarget = "" // no network probes in tests

	report := r.Report(context.Background())
	for _, want := range []string{"Bot uptime:", "Pending: 1", "Active: none", "aria2c:"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
}
