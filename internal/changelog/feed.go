package changelog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/product-registry-service/internal/obs"
)

// Feed is a buffered event pipe with a background broker. Producers append
// to an unbounded backlog and never block; the broker moves entries into a
// bounded output channel consumed by the recorder workers.
type Feed struct {
	mu           sync.Mutex
	backlog      []Event
	notify       chan struct{}
	out          chan Event
	shuttingDown atomic.Bool

	published atomic.Uint64
	recorded  atomic.Uint64
}

// NewFeed creates a Feed with a buffered output channel.
func NewFeed(outBuffer int) *Feed {
	if outBuffer <= 0 {
		outBuffer = 64
	}
	return &Feed{
		notify: make(chan struct{}, 1),
		out:    make(chan Event, outBuffer),
	}
}

// Start runs the broker loop.
func (f *Feed) Start(ctx context.Context) {
	go f.broker(ctx)
}

// broker moves backlog entries to the output channel and warns when the
// backlog outgrows the output buffer.
func (f *Feed) broker(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		f.flushOnce()
		if sz := f.BacklogSize(); sz > cap(f.out) {
			obs.Logger.Warn("changelog backlog exceeds output buffer", "backlog_size", sz, "buffer", cap(f.out))
		}
		select {
		case <-ctx.Done():
			return
		case <-f.notify:
		case <-ticker.C:
		}
	}
}

// flushOnce drains backlog into the output buffer.
func (f *Feed) flushOnce() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.backlog) > 0 && len(f.out) < cap(f.out) {
		ev := f.backlog[0]
		f.backlog = f.backlog[1:]
		f.out <- ev
	}
	obs.ChangeBacklog.Set(float64(len(f.backlog)))
}

// Enqueue appends an event to the backlog and notifies the broker. It
// reports false once intake has been closed.
func (f *Feed) Enqueue(ev Event) bool {
	if f.shuttingDown.Load() {
		return false
	}
	f.published.Add(1)
	obs.ChangeEventsPublished.Inc()
	f.mu.Lock()
	f.backlog = append(f.backlog, ev)
	obs.ChangeBacklog.Set(float64(len(f.backlog)))
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
	return true
}

// Out exposes the output channel of events.
func (f *Feed) Out() <-chan Event { return f.out }

// BacklogSize returns the number of enqueued-but-not-yet-output events.
func (f *Feed) BacklogSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.backlog)
}

// Depth returns backlog plus buffered output items.
func (f *Feed) Depth() int {
	f.mu.Lock()
	bl := len(f.backlog)
	f.mu.Unlock()
	return bl + len(f.out)
}

// MarkRecorded increases the recorded counter.
func (f *Feed) MarkRecorded() {
	f.recorded.Add(1)
	obs.ChangeEventsRecorded.Inc()
}

// Metrics returns counters and sizes for observability.
func (f *Feed) Metrics() (published, recorded uint64, backlog, depth int) {
	published = f.published.Load()
	recorded = f.recorded.Load()
	backlog = f.BacklogSize()
	depth = f.Depth()
	return published, recorded, backlog, depth
}

// CloseIntake disallows future enqueues.
func (f *Feed) CloseIntake() { f.shuttingDown.Store(true) }

// IsShuttingDown reports whether intake has been closed.
func (f *Feed) IsShuttingDown() bool { return f.shuttingDown.Load() }
