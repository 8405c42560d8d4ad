package activity

import (
	"context"
	"sync"
)

// CaptureHook collects scope lifecycle events so tests can assert on the
// emissions a tree produced. Setting Err makes every notification fail,
// which exercises the fan-out error paths.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify appends the normalized event to Events and returns the configured
// error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}
