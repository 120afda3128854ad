package stream

import (
	"context"

	"github.com/bitmark-inc/peerlog/counter"
)

// sendToTargets delivers payload toward each target, using up to
// redundancy next-hop candidates per target (direct session if one is
// open, else the routing table's lowest-RTT hops, else an auto-dial
// attempt straight at the target - the common case right after a ring
// update hands out a brand new leader nobody has routes to yet).
func (st *Stream) sendToTargets(ctx context.Context, targets []string, redundancy uint8, payload []byte) {
	for _, target := range targets {
		for _, hop := range st.candidateHops(target, redundancy, "") {
			st.deliverToHop(ctx, target, hop, payload)
		}
	}
}

func (st *Stream) deliverToHop(ctx context.Context, target, hop string, payload []byte) {
	sess, err := st.openSession(ctx, hop)
	if nil != err {
		if nil != st.log {
			st.log.Debugf("send to %s via %s: %v", target, hop, err)
		}
		return
	}
	if err := sess.write(payload); nil != err {
		if nil != st.log {
			st.log.Debugf("send to %s via %s: write failed: %v", target, hop, err)
		}
	}
}

// candidateHops picks up to redundancy neighbors to try for reaching
// target, never including exclude (the link a frame was relayed in
// on, so it isn't bounced straight back).
func (st *Stream) candidateHops(target string, redundancy uint8, exclude string) []string {
	if redundancy < 1 {
		redundancy = 1
	}

	st.mu.Lock()
	_, direct := st.sessions[target]
	st.mu.Unlock()
	if direct && target != exclude {
		return []string{target}
	}

	if nil != st.route {
		hops := st.route.NextHops(target)
		out := make([]string, 0, redundancy)
		for _, h := range hops {
			if h.Neighbor == exclude {
				continue
			}
			out = append(out, h.Neighbor)
			if uint8(len(out)) >= redundancy {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	if target != exclude {
		return []string{target}
	}
	return nil
}

// broadcastHops picks up to redundancy currently connected neighbors
// other than exclude, for relaying to a target this node has no known
// route to.
func (st *Stream) broadcastHops(redundancy uint8, exclude string) []string {
	if redundancy < 1 {
		redundancy = 1
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]string, 0, redundancy)
	for neighbor := range st.sessions {
		if neighbor == exclude {
			continue
		}
		out = append(out, neighbor)
		if uint8(len(out)) >= redundancy {
			break
		}
	}
	return out
}

// fanoutToNeighbors writes payload to every connected neighbor other
// than exclude - Seek's full-mesh flood, both from Publish and when a
// non-target relay keeps a Seek alive.
func (st *Stream) fanoutToNeighbors(payload []byte, exclude string) {
	st.mu.Lock()
	sessions := make([]*session, 0, len(st.sessions))
	for neighbor, sess := range st.sessions {
		if neighbor == exclude {
			continue
		}
		sessions = append(sessions, sess)
	}
	st.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.write(payload); nil != err && nil != st.log {
			st.log.Debugf("fanout to %s: %v", sess.neighbor, err)
		}
	}
}

func (st *Stream) bumpSeenCounter(key string) uint32 {
	st.countsMu.Lock()
	c, ok := st.counts[key]
	if !ok {
		c = new(counter.Counter)
		st.counts[key] = c
	}
	if len(st.counts) > 2*dedupCapacity {
		for k := range st.counts {
			if !st.seen.Exists(k) {
				delete(st.counts, k)
			}
		}
	}
	st.countsMu.Unlock()
	return uint32(c.Increment())
}
