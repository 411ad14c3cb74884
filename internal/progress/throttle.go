package progress

import (
	"sync"

	"golang.org/x/time/rate"
)

// Renderer turns an update into the message text shown to the user.
type Renderer func(u Update) string

// Throttle rate-limits rendered progress messages before they reach the
// notification channel. A message is forwarded when the time window has
// elapsed or the percentage moved by at least MinDelta, whichever comes
// first. The final update is always forwarded. Consecutive duplicates are
// dropped. Telegram silently throttles edits sent too fast, so this is a
// correctness requirement, not an optimization.
type Throttle struct {
	render   Renderer
	send     func(text string)
	limiter  *rate.Limiter
	minDelta float64

	mu      sync.Mutex
	lastPct float64
	lastMsg string
}

// NewThrottle wraps send with rate limiting. window is the minimum interval
// between forwarded messages, minDelta the percentage step that bypasses it.
func NewThrottle(window rate.Limit, minDelta float64, render Renderer, send func(string)) *Throttle {
	return &Throttle{
		render:   render,
		send:     send,
		limiter:  rate.NewLimiter(window, 1),
		minDelta: minDelta,
		lastPct:  -1,
	}
}

// Report implements Sink.
func (t *Throttle) Report(u Update) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !u.Final() {
		delta := u.Percent - t.lastPct
		if delta < t.minDelta && !t.limiter.Allow() {
			return
		}
	}

	msg := t.render(u)
	if msg == t.lastMsg {
		return
	}
	t.lastMsg = msg
	t.lastPct = u.Percent
	t.send(msg)
}
