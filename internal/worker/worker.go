package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"relaybot/internal/domain"
	"relaybot/internal/progress"
	"relaybot/internal/storage"
)

// Worker owns the single processing slot: it drains the queue one job at
// a time, driving fetch then relay, and pushes status back through the
// Notifier. A single job's failure never stops the loop; only queue
// exhaustion or cancellation does.
type Worker struct {
	queue    *domain.Queue
	store    *storage.Store
	fetcher  domain.Fetcher
	relay    domain.Relay
	notifier domain.Notifier
	history  domain.History

	window   time.Duration // progress edit window
	minDelta float64       // percent step that bypasses the window
}

// New creates a worker over the shared queue.
func New(queue *domain.Queue, store *storage.Store, fetcher domain.Fetcher, relay domain.Relay, notifier domain.Notifier, history domain.History, window time.Duration, minDelta float64) *Worker {
	return &Worker{
		queue:    queue,
		store:    store,
		fetcher:  fetcher,
		relay:    relay,
		notifier: notifier,
		history:  history,
		window:   window,
		minDelta: minDelta,
	}
}

// Kick starts the drain loop in a goroutine unless one is already
// running; starting a second worker is a no-op.
func (w *Worker) Kick(ctx context.Context) {
	if !w.queue.TryStart() {
		return
	}
	go w.drain(ctx)
}

func (w *Worker) drain(ctx context.Context) {
	log.Println("worker: queue processing started")
	for {
		job := w.queue.Next()
		if job == nil {
			log.Println("worker: queue idle")
			return
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *domain.Job) {
	log.Printf("job %s: processing %s", job.ID, job.URL)

	ref, err := w.notifier.Send(job.Submitter, fmt.Sprintf(
		"🔄 Processing your download\n%s\nStarting...", trimURL(job.URL)))
	if err != nil {
		// Without a progress message there is nowhere to report; skip
		// the job rather than stall the queue.
		log.Printf("job %s: progress message failed: %v", job.ID, err)
		w.finish(ctx, job, domain.StatusFailed, "could not reach submitter")
		return
	}
	job.Progress = ref

	// Cancellation checkpoint: cooperative, before any transfer starts.
	if w.queue.Cancelled() {
		w.finish(ctx, job, domain.StatusCancelled, "")
		return
	}

	w.queue.SetStatus(job, domain.StatusDownloading)

	dest, err := w.store.Allocate(job.URL)
	if err != nil {
		log.Printf("job %s: allocate failed: %v", job.ID, err)
		w.finish(ctx, job, domain.StatusFailed, err.Error())
		return
	}

	if err := w.fetcher.Fetch(ctx, job.URL, dest, w.throttled(ref, "📥 Downloading")); err != nil {
		log.Printf("job %s: fetch failed: %v", job.ID, err)
		w.finish(ctx, job, domain.StatusFailed, err.Error())
		return
	}

	w.queue.SetStatus(job, domain.StatusUploading)
	w.edit(ref, "📤 Upload starting...")

	if err := w.relay.Send(ctx, dest, w.throttled(ref, "📤 Uploading")); err != nil {
		log.Printf("job %s: relay failed: %v", job.ID, err)
		w.finish(ctx, job, domain.StatusFailed, err.Error())
		return
	}

	w.finish(ctx, job, domain.StatusCompleted, "")
}

// finish applies the terminal status, sends the single final status
// message, and records the outcome.
func (w *Worker) finish(ctx context.Context, job *domain.Job, status domain.JobStatus, reason string) {
	w.queue.SetStatus(job, status)
	job.Error = reason
	job.DoneAt = time.Now()

	var text string
	switch status {
	case domain.StatusCompleted:
		text = "✅ Done! Video delivered to the group."
	case domain.StatusCancelled:
		text = "🚫 Download cancelled."
	default:
		text = "❌ Failed: " + reason
	}
	if !job.Progress.Zero() {
		w.edit(job.Progress, text)
	}

	if w.history != nil {
		if err := w.history.Record(ctx, job); err != nil {
			log.Printf("job %s: history record failed: %v", job.ID, err)
		}
	}
	log.Printf("job %s: %s", job.ID, status)
}

// throttled builds the rate-limited progress sink for one transfer phase.
func (w *Worker) throttled(ref domain.MessageRef, verb string) progress.Sink {
	render := func(u progress.Update) string {
		if u.Total > 0 {
			return fmt.Sprintf("%s: %.1f%% (%s / %s) %s/s",
				verb, u.Percent,
				humanize.Bytes(uint64(u.Done)), humanize.Bytes(uint64(u.Total)),
				humanize.Bytes(uint64(u.Speed)))
		}
		return fmt.Sprintf("%s: %s %s/s", verb,
			humanize.Bytes(uint64(u.Done)), humanize.Bytes(uint64(u.Speed)))
	}
	return progress.NewThrottle(rate.Every(w.window), w.minDelta, render, func(text string) {
		w.edit(ref, text)
	})
}

// edit swallows notifier edit failures: rate-limited edits must never
// take the worker down.
func (w *Worker) edit(ref domain.MessageRef, text string) {
	if err := w.notifier.Edit(ref, text); err != nil {
		log.Printf("worker: progress edit failed: %v", err)
	}
}

func trimURL(url string) string {
	if len(url) > 50 {
		return url[:50] + "..."
	}
	return url
}
