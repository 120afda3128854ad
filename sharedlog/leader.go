package sharedlog

import (
	"context"
	"time"

	"github.com/bitmark-inc/peerlog/ring"
)

// leadersFor - sample(hash_to_unit(gid), minReplicas) on the current
// ring: the peers that must persist entries belonging to gid.
func (n *Node) leadersFor(gid string, minReplicas uint32) []string {
	count := int(minReplicas)
	if count < 1 {
		count = 1
	}
	return n.ring.Sample(ring.HashToUnit(gid), count)
}

// isLeader - true iff the local peer is itself in the leader set for
// gid, and its own ring membership has matured past
// WAIT_FOR_ROLE_MATURITY. Before maturity, set membership is
// provisional and must not be trusted.
func (n *Node) isLeader(gid string, minReplicas uint32) bool {
	if !n.isMature() {
		return false
	}
	for _, peer := range n.leadersFor(gid, minReplicas) {
		if peer == n.localID {
			return true
		}
	}
	return false
}

func (n *Node) isMature() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.matured
}

// waitForIsLeader blocks until isLeader(gid, minReplicas) is true, the
// context is done, or timeout elapses - whichever comes first. Used by
// the incoming ExchangeHeads path, which must not join a head into the
// Log on behalf of a gid it cannot yet confirm leadership for.
func (n *Node) waitForIsLeader(ctx context.Context, gid string, minReplicas uint32, timeout time.Duration) bool {
	if n.isLeader(gid, minReplicas) {
		return true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return n.isLeader(gid, minReplicas)
		case <-poll.C:
			if n.isLeader(gid, minReplicas) {
				return true
			}
		}
	}
}
