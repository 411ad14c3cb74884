package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"relaybot/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_history (
    id          TEXT PRIMARY KEY,
    url         TEXT NOT NULL,
    user_id     INTEGER NOT NULL,
    chat_id     INTEGER NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT,
    created_at  DATETIME NOT NULL,
    finished_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_history_status ON job_history(status);
`

// History implements domain.History on SQLite. It is an append-only audit
// trail of terminal job outcomes; the live queue is never written here.
type History struct {
	db *sql.DB
}

// New opens (and if needed initializes) the history database.
func New(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends one terminal job outcome.
func (h *History) Record(ctx context.Context, job *domain.Job) error {
	if !job.Status.Terminal() {
		return fmt.Errorf("job %s is not terminal (%s)", job.ID, job.Status)
	}
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO job_history (id, url, user_id, chat_id, status, error, created_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(), job.URL, job.Submitter.UserID, job.Submitter.ChatID,
		string(job.Status), job.Error, job.CreatedAt, job.DoneAt,
	)
	return err
}

// Totals reports lifetime completed and failed job counts.
func (h *History) Totals(ctx context.Context) (completed, failed int64, err error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT
		    COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM job_history`,
		string(domain.StatusCompleted), string(domain.StatusFailed),
	)
	if err := row.Scan(&completed, &failed); err != nil {
		return 0, 0, err
	}
	return completed, failed, nil
}

// Recent returns the last n outcomes, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]domain.JobView, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, url, status, user_id FROM job_history
		 ORDER BY finished_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobView
	for rows.Next() {
		var v domain.JobView
		var status string
		if err := rows.Scan(&v.ID, &v.URL, &status, &v.UserID); err != nil {
			return nil, err
		}
		v.Status = domain.JobStatus(status)
		out = append(out, v)
	}
	return out, rows.Err()
}
