package fetch

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
)

// Aria2 drives the aria2c accelerator: parallel connections, retries at
// the tool's own level, summary lines parsed for progress. Highest
// priority in the chain when the binary is on the host.
type Aria2 struct {
	path        string
	connections int
	tries       int
}

// NewAria2 locates aria2c on PATH.
func NewAria2() *Aria2 {
	path, _ := exec.LookPath("aria2c")
	return &Aria2{path: path, connections: 16, tries: 5}
}

func (a *Aria2) Name() string { return "aria2c" }

func (a *Aria2) Available() bool { return a.path != "" }

// Fetch runs aria2c with ctx supervision; on timeout the process is
// killed by CommandContext, never left orphaned.
func (a *Aria2) Fetch(ctx context.Context, url, dest string, sink progress.Sink) error {
	if url == "" {
		return domain.Terminal("empty URL", nil)
	}

	dir, name := filepath.Split(dest)
	args := []string{
		"-x", strconv.Itoa(a.connections),
		"-s", strconv.Itoa(a.connections),
		"--max-tries", strconv.Itoa(a.tries),
		"--summary-interval", "1",
		"--console-log-level", "warn",
		"--allow-overwrite", "true",
		"--user-agent", browserUserAgent,
		"-d", dir,
		"-o", name,
		url,
	}

	cmd := exec.CommandContext(ctx, a.path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.Terminal("aria2c pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return domain.Terminal("aria2c spawn", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if u, ok := parseAria2(scanner.Text()); ok {
			sink.Report(u)
		}
	}

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.Transient("aria2c timeout", ctx.Err())
		}
		return domain.Transient("aria2c exited", err)
	}

	if _, err := os.Stat(dest); err != nil {
		return domain.Terminal("aria2c produced no artifact", err)
	}
	return nil
}
