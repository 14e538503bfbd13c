package changelog

import "sync/atomic"

// Sequencer hands out the monotonically increasing sequence number stamped
// on every published event.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next sequence number, starting at 1.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
