package stream

import "sync"

// ackWaiter is a continuation parked on an outstanding Acknowledged or
// Seek publish, resolved as acks arrive from its targets.
type ackWaiter struct {
	mu     sync.Mutex
	need   map[string]bool
	acked  map[string]bool
	done   chan struct{}
	closed bool
}

func newAckWaiter(targets []string) *ackWaiter {
	need := make(map[string]bool, len(targets))
	for _, t := range targets {
		need[t] = true
	}
	return &ackWaiter{
		need:  need,
		acked: make(map[string]bool),
		done:  make(chan struct{}),
	}
}

// ack records an ack from target. Closes done the first time any
// target acks: Publish only needs to know delivery was confirmed by
// at least one of its targets, not every one of them.
func (w *ackWaiter) ack(target string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.acked[target] = true
	delete(w.need, target)
	w.closeLocked()
}

func (w *ackWaiter) closeLocked() {
	if !w.closed {
		w.closed = true
		close(w.done)
	}
}

func (w *ackWaiter) ackedTargets() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.acked))
	for t := range w.acked {
		out = append(out, t)
	}
	return out
}

// ackRegistry maps outstanding frame ids to their waiter, so an
// incoming Ack frame can be routed back to the Publish call that is
// blocked on it.
type ackRegistry struct {
	mu      sync.Mutex
	waiters map[[32]byte]*ackWaiter
}

func newAckRegistry() *ackRegistry {
	return &ackRegistry{waiters: make(map[[32]byte]*ackWaiter)}
}

func (r *ackRegistry) register(id [32]byte, targets []string) *ackWaiter {
	w := newAckWaiter(targets)
	r.mu.Lock()
	r.waiters[id] = w
	r.mu.Unlock()
	return w
}

func (r *ackRegistry) forget(id [32]byte) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}

func (r *ackRegistry) lookup(id [32]byte) (*ackWaiter, bool) {
	r.mu.Lock()
	w, ok := r.waiters[id]
	r.mu.Unlock()
	return w, ok
}

func (r *ackRegistry) deliver(id [32]byte, from string) {
	if w, ok := r.lookup(id); ok {
		w.ack(from)
	}
}

func (r *ackRegistry) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.waiters {
		w.mu.Lock()
		w.closeLocked()
		w.mu.Unlock()
	}
}
