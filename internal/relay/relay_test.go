package relay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
)

// fakeUploader scripts upload outcomes per attempt.
type fakeUploader struct {
	connectErr error
	connects   int
	uploads    int
	uploadErrs []error // consumed per attempt; nil entry means success
	gotMeta    Meta
}

func (f *fakeUploader) Connect(ctx context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeUploader) Upload(ctx context.Context, path string, meta Meta, sink progress.Sink) error {
	f.gotMeta = meta
	i := f.uploads
	f.uploads++
	if i < len(f.uploadErrs) {
		return f.uploadErrs[i]
	}
	return nil
}

func writeArtifact(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRelay_Send_RetriesTransientThenSucceeds(t *testing.T) {
	path := writeArtifact(t, 1024)
	up := &fakeUploader{uploadErrs: []error{
		domain.Transient("timeout", nil),
		domain.Transient("connection reset", nil),
		nil,
	}}

	r := New(up, 3, time.Millisecond)
	if err := r.Send(context.Background(), path, progress.Discard); err != nil {
		t.Fatalf("Send() error: %v, want success on third attempt", err)
	}
	if up.uploads != 3 {
		t.Errorf("uploads = %d, want 3", up.uploads)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("artifact still exists after successful send")
	}
}

func TestRelay_Send_TerminalFailsAfterOneAttempt(t *testing.T) {
	path := writeArtifact(t, 1024)
	up := &fakeUploader{uploadErrs: []error{domain.Terminal("file rejected", nil)}}

	r := New(up, 3, time.Millisecond)
	if err := r.Send(context.Background(), path, progress.Discard); err == nil {
		t.Fatal("Send() = nil, want terminal failure")
	}
	if up.uploads != 1 {
		t.Errorf("uploads = %d, want exactly 1 for terminal error", up.uploads)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("artifact still exists after failed send; cleanup is unconditional")
	}
}

func TestRelay_Send_ExhaustsRetryBudget(t *testing.T) {
	path := writeArtifact(t, 1024)
	up := &fakeUploader{uploadErrs: []error{
		domain.Transient("timeout", nil),
		domain.Transient("timeout", nil),
		domain.Transient("timeout", nil),
	}}

	r := New(up, 3, time.Millisecond)
	if err := r.Send(context.Background(), path, progress.Discard); err == nil {
		t.Fatal("Send() = nil, want failure after exhausting retries")
	}
	if up.uploads != 3 {
		t.Errorf("uploads = %d, want 3", up.uploads)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("artifact still exists after exhausted retries")
	}
}

func TestRelay_Send_LazyConnectOncePerProcess(t *testing.T) {
	pathA := writeArtifact(t, 1024)
	pathB := writeArtifact(t, 1024)
	up := &fakeUploader{}

	r := New(up, 3, time.Millisecond)
	if err := r.Send(context.Background(), pathA, progress.Discard); err != nil {
		t.Fatalf("first Send() error: %v", err)
	}
	if err := r.Send(context.Background(), pathB, progress.Discard); err != nil {
		t.Fatalf("second Send() error: %v", err)
	}
	if up.connects != 1 {
		t.Errorf("connects = %d, want 1 (connection reused across jobs)", up.connects)
	}
}

func TestRelay_Send_ConnectFailureDoesNotPoisonLaterJobs(t *testing.T) {
	pathA := writeArtifact(t, 1024)
	up := &fakeUploader{connectErr: domain.Transient("dial", errors.New("refused"))}

	r := New(up, 2, time.Millisecond)
	if err := r.Send(context.Background(), pathA, progress.Discard); err == nil {
		t.Fatal("Send() = nil, want connect failure")
	}

	// Destination recovers; the next job connects fresh.
	up.connectErr = nil
	pathB := writeArtifact(t, 1024)
	if err := r.Send(context.Background(), pathB, progress.Discard); err != nil {
		t.Fatalf("Send() after recovery error: %v", err)
	}
}

func TestRelay_Send_MissingArtifact(t *testing.T) {
	up := &fakeUploader{}
	r := New(up, 3, time.Millisecond)
	err := r.Send(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), progress.Discard)
	if err == nil {
		t.Fatal("Send() = nil, want error for missing artifact")
	}
	if up.uploads != 0 {
		t.Errorf("uploads = %d, want 0", up.uploads)
	}
}

func TestRelay_Send_AttachesMetadata(t *testing.T) {
	path := writeArtifact(t, 2_500_000) // ~20s at the assumed bitrate
	up := &fakeUploader{}

	r := New(up, 1, time.Millisecond)
	if err := r.Send(context.Background(), path, progress.Discard); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if up.gotMeta.Width != 1280 || up.gotMeta.Height != 720 {
		t.Errorf("dimensions = %dx%d, want 1280x720", up.gotMeta.Width, up.gotMeta.Height)
	}
	if up.gotMeta.Duration != 20 {
		t.Errorf("Duration = %d, want 20", up.gotMeta.Duration)
	}
	if up.gotMeta.FileName != "video.mp4" {
		t.Errorf("FileName = %q, want video.mp4", up.gotMeta.FileName)
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		size int64
		want int
	}{
		{0, 10},               // clamp low
		{125000, 10},          // 1s raw, clamped
		{1_250_000, 10},       // exactly min
		{12_500_000, 100},     // 100s
		{1_000_000_000, 3600}, // clamp high
	}
	for _, tt := range tests {
		if got := estimateDuration(tt.size); got != tt.want {
			t.Errorf("estimateDuration(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
