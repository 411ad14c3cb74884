package fetch

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
)

// Wget drives the wget accelerator: a single resumable connection with
// the tool's own retry budget. Second priority in the chain.
type Wget struct {
	path  string
	tries int
}

// NewWget locates wget on PATH.
func NewWget() *Wget {
	path, _ := exec.LookPath("wget")
	return &Wget{path: path, tries: 5}
}

func (w *Wget) Name() string { return "wget" }

func (w *Wget) Available() bool { return w.path != "" }

// Fetch runs wget with ctx supervision. Progress comes from the
// dot-progress lines wget writes to stderr.
func (w *Wget) Fetch(ctx context.Context, url, dest string, sink progress.Sink) error {
	if url == "" {
		return domain.Terminal("empty URL", nil)
	}

	args := []string{
		"--tries", strconv.Itoa(w.tries),
		"--continue",
		"--user-agent", browserUserAgent,
		"--progress", "dot:mega",
		"-O", dest,
		url,
	}

	cmd := exec.CommandContext(ctx, w.path, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.Terminal("wget pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return domain.Terminal("wget spawn", err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		if u, ok := parseWget(scanner.Text()); ok {
			sink.Report(u)
		}
	}

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Transient("wget timeout", ctx.Err())
		}
		return domain.Transient("wget exited", err)
	}

	if _, err := os.Stat(dest); err != nil {
		return domain.Terminal("wget produced no artifact", err)
	}
	return nil
}
