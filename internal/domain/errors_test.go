package domain

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", Transient("connect", errors.New("boom")), true},
		{"explicit terminal", Terminal("HTTP 404", nil), false},
		{"wrapped transient", fmt.Errorf("send: %w", Transient("timeout", nil)), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"string timeout", errors.New("read timeout on socket"), true},
		{"plain error", errors.New("unsupported media"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransferError_Error(t *testing.T) {
	err := Terminal("HTTP 500", errors.New("server error"))
	if got := err.Error(); got != "HTTP 500: server error" {
		t.Errorf("Error() = %q", got)
	}
	bare := Terminal("spawn failed", nil)
	if got := bare.Error(); got != "spawn failed" {
		t.Errorf("Error() = %q", got)
	}
}
