package domain

import (
	"context"

	"relaybot/internal/progress"
)

// Fetcher is the driven port for downloading a URL to a local path.
// Implementations report failure as an error; the caller decides what a
// failure means for the job.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, sink progress.Sink) error
}

// Relay is the driven port for delivering a fetched artifact to the fixed
// destination. Implementations own artifact cleanup: the file is deleted
// after the final attempt whether or not it succeeded.
type Relay interface {
	Send(ctx context.Context, path string, sink progress.Sink) error
}

// Notifier delivers status and progress text back to submitters. Edit
// failures (rate limiting and the like) are returned, but a failed edit
// must never stop the worker.
type Notifier interface {
	Send(sub Submitter, text string) (MessageRef, error)
	Edit(ref MessageRef, text string) error
}

// History records terminal job outcomes for the audit trail. It is not a
// queue store; pending jobs are never written anywhere.
type History interface {
	Record(ctx context.Context, job *Job) error
	Totals(ctx context.Context) (completed, failed int64, err error)
}
