// Package sysinfo renders the /status system report: host metrics,
// download tooling availability, connectivity, and pipeline statistics.
// Every probe degrades to an "unavailable" line on failure; the report
// itself never fails.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"relaybot/internal/domain"
	"relaybot/internal/storage"
)

const pingTimeout = 10 * time.Second

// Reporter assembles the status report.
type Reporter struct {
	startedAt time.Time
	store     *storage.Store
	queue     *domain.Queue
	history   domain.History

	// pingTarget is probed for connectivity; empty disables the probe.
	pingTarget string
}

// NewReporter creates a reporter over the live pipeline state.
func NewReporter(store *storage.Store, queue *domain.Queue, history domain.History) *Reporter {
	return &Reporter{
		startedAt:  time.Now(),
		store:      store,
		queue:      queue,
		history:    history,
		pingTarget: "8.8.8.8",
	}
}

// Report renders the full status text.
func (r *Reporter) Report(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("📊 System status\n\n")

	fmt.Fprintf(&sb, "Bot uptime: %s\n", formatDuration(time.Since(r.startedAt)))
	if up, err := host.UptimeWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Host uptime: %s\n", formatDuration(time.Duration(up)*time.Second))
	}

	sb.WriteString("\n🖥 Host\n")
	if pct, err := cpu.PercentWithContext(ctx, 500*time.Millisecond, false); err == nil && len(pct) > 0 {
		fmt.Fprintf(&sb, "CPU: %.1f%%\n", pct[0])
	} else {
		sb.WriteString("CPU: unavailable\n")
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Fprintf(&sb, "Memory: %s / %s (%.1f%%)\n",
			humanize.Bytes(vm.Used), humanize.Bytes(vm.Total), vm.UsedPercent)
	} else {
		sb.WriteString("Memory: unavailable\n")
	}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil && sw.Total > 0 {
		fmt.Fprintf(&sb, "Swap: %s / %s (%.1f%%)\n",
			humanize.Bytes(sw.Used), humanize.Bytes(sw.Total), sw.UsedPercent)
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		fmt.Fprintf(&sb, "Disk: %s / %s (%.1f%%)\n",
			humanize.Bytes(du.Used), humanize.Bytes(du.Total), du.UsedPercent)
	} else {
		sb.WriteString("Disk: unavailable\n")
	}
	if counters, err := gopsnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		fmt.Fprintf(&sb, "Network: ⬇ %s ⬆ %s\n",
			humanize.Bytes(counters[0].BytesRecv), humanize.Bytes(counters[0].BytesSent))
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := proc.MemoryInfoWithContext(ctx); err == nil {
			fmt.Fprintf(&sb, "Bot process: %s resident\n", humanize.Bytes(mi.RSS))
		}
	}

	sb.WriteString("\n🔧 Download tools\n")
	fmt.Fprintf(&sb, "aria2c: %s\n", mark(toolAvailable("aria2c")))
	fmt.Fprintf(&sb, "wget: %s\n", mark(toolAvailable("wget")))
	if r.pingTarget != "" {
		if latency, err := r.ping(ctx); err == nil {
			fmt.Fprintf(&sb, "Connectivity (%s): ✅ %s\n", r.pingTarget, latency.Round(time.Millisecond))
		} else {
			fmt.Fprintf(&sb, "Connectivity (%s): ❌\n", r.pingTarget)
		}
	}

	sb.WriteString("\n📦 Downloads\n")
	if files, bytes, err := r.store.Usage(); err == nil {
		fmt.Fprintf(&sb, "Folder: %d file(s), %s\n", files, humanize.Bytes(uint64(bytes)))
	}

	sb.WriteString("\n📋 Queue\n")
	snap := r.queue.Snapshot()
	fmt.Fprintf(&sb, "Pending: %d\n", len(snap.Pending))
	if snap.Current != nil {
		fmt.Fprintf(&sb, "Active: %s (%s)\n", snap.Current.URL, snap.Current.Status)
	} else {
		sb.WriteString("Active: none\n")
	}
	if r.history != nil {
		if completed, failed, err := r.history.Totals(ctx); err == nil {
			fmt.Fprintf(&sb, "Lifetime: %d completed, %d failed\n", completed, failed)
		}
	}

	return sb.String()
}

// ping runs a single bounded ping probe and reports round-trip time as
// observed from process start to exit.
func (r *Reporter) ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", "5", r.pingTarget)
	if err := cmd.Run(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func mark(ok bool) string {
	if ok {
		return "✅ available"
	}
	return "❌ missing"
}

// formatDuration renders a duration as coarse d/h/m/s components.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := d - minutes*time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds/time.Second)
	default:
		return fmt.Sprintf("%ds", seconds/time.Second)
	}
}
