package domain

import "sync"

// Queue is the process-wide download queue: a FIFO of pending jobs plus the
// single "currently processing" slot. Created once at startup, never
// persisted, so after a restart the queue is empty.
//
// Two actors touch it: submission handlers append and cancel, the worker
// loop pops. Every access goes through the mutex.
type Queue struct {
	mu              sync.Mutex
	pending         []*Job
	current         *Job
	cancelRequested bool
	running         bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a job and returns its 1-based queue position.
func (q *Queue) Enqueue(job *Job) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, job)
	return len(q.pending)
}

// CancelAll requests cancellation: pending jobs are dropped immediately and
// never run, the in-flight job resolves to cancelled at its next checkpoint.
// Returns how many jobs were affected.
func (q *Queue) CancelAll() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := len(q.pending)
	if q.current != nil {
		count++
	}
	if count == 0 {
		return 0
	}
	q.cancelRequested = true
	q.pending = nil
	return count
}

// Cancelled reports whether cancellation was requested.
func (q *Queue) Cancelled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelRequested
}

// TryStart claims the worker slot. Returns false if a worker loop is
// already running; starting a second one is a no-op.
func (q *Queue) TryStart() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return false
	}
	q.running = true
	return true
}

// Next pops the front pending job into the current slot. It returns nil
// when the queue is exhausted or cancellation was requested; in that case
// the worker slot is released, the current slot cleared, and the cancel
// flag reset so new submissions start fresh.
func (q *Queue) Next() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cancelRequested || len(q.pending) == 0 {
		q.running = false
		q.current = nil
		q.cancelRequested = false
		return nil
	}

	job := q.pending[0]
	q.pending = q.pending[1:]
	q.current = job
	return job
}

// SetStatus updates the current job's status under the queue lock.
func (q *Queue) SetStatus(job *Job, status JobStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Status = status
}

// Snapshot is a point-in-time view of queue state.
type Snapshot struct {
	Pending   []JobView
	Current   *JobView
	Running   bool
	Cancelled bool
}

// JobView is a read-only projection of a job for display.
type JobView struct {
	ID     string
	URL    string
	Status JobStatus
	UserID int64
}

// Snapshot copies the queue state for display without exposing live jobs.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := Snapshot{
		Running:   q.running,
		Cancelled: q.cancelRequested,
		Pending:   make([]JobView, 0, len(q.pending)),
	}
	for _, job := range q.pending {
		snap.Pending = append(snap.Pending, viewOf(job))
	}
	if q.current != nil {
		v := viewOf(q.current)
		snap.Current = &v
	}
	return snap
}

func viewOf(job *Job) JobView {
	return JobView{
		ID:     job.ID.String(),
		URL:    job.URL,
		Status: job.Status,
		UserID: job.Submitter.UserID,
	}
}
