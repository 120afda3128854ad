package stream

import (
	"sync"

	"golang.org/x/time/rate"
)

// inboundBurst/inboundRate bound how many frames per second a single
// neighbor may deliver before handlePayload starts dropping them,
// following rpc/ratelimit.go's golang.org/x/time/rate token-bucket
// idiom. A gossip neighbor has no request/response pairing to delay
// the way an RPC client does, so an over-limit frame is dropped
// outright rather than reserved-and-slept: stalling the read loop
// would only give one noisy neighbor a way to wedge its own session,
// not the rest of the mesh, but dropping costs nothing and the
// sender's own retry/TTL logic already tolerates lost frames.
const (
	inboundRate  = rate.Limit(200)
	inboundBurst = 400
)

type neighborLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newNeighborLimiter() *neighborLimiter {
	return &neighborLimiter{limiters: make(map[string]*rate.Limiter)}
}

// allow - true if neighbor's bucket has a token to spend right now
func (nl *neighborLimiter) allow(neighbor string) bool {
	nl.mu.Lock()
	limiter, ok := nl.limiters[neighbor]
	if !ok {
		limiter = rate.NewLimiter(inboundRate, inboundBurst)
		nl.limiters[neighbor] = limiter
	}
	nl.mu.Unlock()
	return limiter.Allow()
}

// forget - drop neighbor's bucket once it disconnects, so a long-lived
// node doesn't accumulate one limiter per peer it has ever heard from
func (nl *neighborLimiter) forget(neighbor string) {
	nl.mu.Lock()
	delete(nl.limiters, neighbor)
	nl.mu.Unlock()
}
