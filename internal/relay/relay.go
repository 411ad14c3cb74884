package relay

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
)

// Meta is the display metadata attached to an uploaded artifact so the
// destination renders it inline-playable.
type Meta struct {
	FileName string
	Size     int64
	Duration int // seconds
	Width    int
	Height   int
}

// Uploader is the destination-side port. Connect is called lazily once
// and the connection reused across jobs; Upload streams one artifact.
type Uploader interface {
	Connect(ctx context.Context) error
	Upload(ctx context.Context, path string, meta Meta, sink progress.Sink) error
}

// Relay delivers fetched artifacts to the fixed destination with a retry
// budget for transient failures and unconditional artifact cleanup.
type Relay struct {
	up         Uploader
	maxRetries int
	backoff    time.Duration
	connected  bool
}

// New creates a relay. maxRetries is the total attempt budget per send.
func New(up Uploader, maxRetries int, backoff time.Duration) *Relay {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Relay{up: up, maxRetries: maxRetries, backoff: backoff}
}

// Send implements domain.Relay. The artifact is deleted exactly once
// after the final attempt, success or failure; a failed connection on one
// job does not poison later jobs.
func (r *Relay) Send(ctx context.Context, path string, sink progress.Sink) (err error) {
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("relay: cleanup of %s failed: %v", path, rmErr)
		}
	}()

	info, err := os.Stat(path)
	if err != nil {
		return domain.Terminal("artifact missing", err)
	}

	meta := Meta{
		FileName: info.Name(),
		Size:     info.Size(),
		Duration: estimateDuration(info.Size()),
		Width:    defaultWidth,
		Height:   defaultHeight,
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Printf("relay: retrying %s, attempt %d/%d", meta.FileName, attempt, r.maxRetries)
		}

		if !r.connected {
			if err := r.up.Connect(ctx); err != nil {
				lastErr = fmt.Errorf("connect: %w", err)
				if !domain.IsTransient(err) {
					return lastErr
				}
				continue
			}
			r.connected = true
		}

		if err := r.up.Upload(ctx, path, meta, sink); err != nil {
			lastErr = err
			if !domain.IsTransient(err) {
				return fmt.Errorf("upload: %w", err)
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("upload failed after %d attempts: %w", r.maxRetries, lastErr)
}

const (
	defaultWidth  = 1280
	defaultHeight = 720

	// Duration is estimated from size at an assumed ~1 Mbps bitrate and
	// clamped to sane bounds. A crude approximation kept on purpose:
	// real media inspection would need another external tool.
	assumedBytesPerSecond = 125000
	minDurationSec        = 10
	maxDurationSec        = 3600
)

func estimateDuration(size int64) int {
	d := size / assumedBytesPerSecond
	if d < minDurationSec {
		return minDurationSec
	}
	if d > maxDurationSec {
		return maxDurationSec
	}
	return int(d)
}
