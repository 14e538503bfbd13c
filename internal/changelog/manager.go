// Package changelog records catalogue mutations as an ordered event feed.
package changelog

import (
	"context"
	"sync"
	"time"

	"github.com/fairyhunter13/product-registry-service/internal/config"
	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
)

// Manager coordinates the recorder workers that consume the feed and keep a
// bounded window of recent events.
type Manager struct {
	cfg    config.Config
	feed   *Feed
	seq    Sequencer
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	recent []Event
}

// NewManager constructs a Manager over the given feed.
func NewManager(cfg config.Config, feed *Feed) *Manager {
	return &Manager{cfg: cfg, feed: feed}
}

// Start launches the broker and the recorder workers.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.feed.Start(m.ctx)
	n := m.cfg.ChangelogWorkers
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go m.worker(m.ctx)
	}
	obs.Logger.Info("changelog workers started", "worker_count", n)
}

// Stop cancels background routines and waits for the workers to exit.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Publish stamps a sequence number on the mutation and enqueues it. It
// never blocks; once intake is closed the event is dropped.
func (m *Manager) Publish(ctx context.Context, op string, p model.Product) {
	ev := Event{
		Seq:        m.seq.Next(),
		Op:         op,
		ProductID:  p.ID,
		Name:       p.Name,
		RequestID:  obs.RequestIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
	_ = m.feed.Enqueue(ev)
}

// worker drains events from the feed into the recent window.
func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.feed.Out():
			m.record(ev)
			m.feed.MarkRecorded()
		}
	}
}

// record appends ev to the window, evicting the oldest entry when full.
// Workers may deliver out of order, so the window is kept sorted by seq.
func (m *Manager) record(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent = append(m.recent, ev)
	for i := len(m.recent) - 1; i > 0 && m.recent[i-1].Seq > m.recent[i].Seq; i-- {
		m.recent[i-1], m.recent[i] = m.recent[i], m.recent[i-1]
	}
	limit := m.cfg.ChangelogRecent
	if limit <= 0 {
		limit = 100
	}
	if len(m.recent) > limit {
		m.recent = m.recent[len(m.recent)-limit:]
	}
}

// Recent returns a copy of the retained events, newest first.
func (m *Manager) Recent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.recent))
	for i, ev := range m.recent {
		out[len(out)-1-i] = ev
	}
	return out
}

// Metrics exposes the underlying feed counters.
func (m *Manager) Metrics() (published, recorded uint64, backlog, depth int) {
	return m.feed.Metrics()
}

// BacklogSize returns pending items in the feed.
func (m *Manager) BacklogSize() int { return m.feed.BacklogSize() }

// CloseIntake disallows future enqueues.
func (m *Manager) CloseIntake() { m.feed.CloseIntake() }

// IsShuttingDown reports whether new events are being rejected.
func (m *Manager) IsShuttingDown() bool { return m.feed.IsShuttingDown() }

// DrainUntil blocks until the feed is fully drained or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		published, recorded, backlog, depth := m.feed.Metrics()
		if backlog == 0 && depth == 0 && published == recorded {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
