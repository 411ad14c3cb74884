package progress

// Update is one progress observation from a transfer.
type Update struct {
	Percent float64 // 0..100, best effort
	Done    int64   // bytes transferred so far
	Total   int64   // total bytes, 0 if unknown
	Speed   float64 // bytes per second, 0 if unknown
}

// Final reports whether the update represents a finished transfer.
func (u Update) Final() bool {
	return u.Percent >= 100 || (u.Total > 0 && u.Done >= u.Total)
}

// Sink receives progress updates from a transfer.
type Sink interface {
	Report(u Update)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(u Update)

// Report calls f(u).
func (f SinkFunc) Report(u Update) { f(u) }

// Discard is a Sink that drops every update.
var Discard Sink = SinkFunc(func(Update) {})
