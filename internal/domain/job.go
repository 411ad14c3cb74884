package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDownloading JobStatus = "downloading"
	StatusUploading   JobStatus = "uploading"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusCancelled   JobStatus = "cancelled"
)

// Terminal returns true once a job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Active returns true while a job holds the single processing slot.
func (s JobStatus) Active() bool {
	return s == StatusDownloading || s == StatusUploading
}

// Submitter identifies who asked for a download, used only to route
// notifications back. Opaque to the pipeline.
type Submitter struct {
	ChatID    int64
	MessageID int
	UserID    int64
}

// MessageRef points at an editable progress message owned by the Notifier.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Zero reports whether the ref has been assigned yet.
func (r MessageRef) Zero() bool {
	return r.MessageID == 0
}

// Job is one submitted URL's unit of work through the pipeline. URL is
// immutable after creation; Status moves forward only, except cancelled,
// which is reachable from queued or downloading.
type Job struct {
	ID        uuid.UUID
	URL       string
	Submitter Submitter
	Status    JobStatus
	Progress  MessageRef // progress sink handle, zero until processing starts
	Error     string
	CreatedAt time.Time
	DoneAt    time.Time
}

// NewJob creates a queued job for a URL.
func NewJob(url string, sub Submitter) *Job {
	return &Job{
		ID:        uuid.New(),
		URL:       url,
		Submitter: sub,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}
}
