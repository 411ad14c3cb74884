package domain

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"
)

var (
	// ErrInvalidURL rejects malformed input before it ever reaches the queue.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrCancelled marks a job stopped at a cancellation checkpoint.
	ErrCancelled = errors.New("cancelled")
)

// TransferError classifies a transfer failure as transient (worth a retry)
// or terminal (one attempt only).
type TransferError struct {
	Reason    string
	Transient bool
	Err       error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *TransferError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable transfer failure.
func Transient(reason string, err error) error {
	return &TransferError{Reason: reason, Transient: true, Err: err}
}

// Terminal wraps err as a non-retryable transfer failure.
func Terminal(reason string, err error) error {
	return &TransferError{Reason: reason, Transient: false, Err: err}
}

// IsTransient reports whether err is in the retryable class: explicit
// transient classification, timeouts, and connection-level network errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransferError
	if errors.As(err, &te) {
		return te.Transient
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// Last resort for errors flattened to strings by lower layers.
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"timeout", "connection reset", "connection refused", "network"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
