package sharedlog

import (
	"runtime"

	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/pid"
)

// relativeFactorChangeThreshold - a rebalance tick only broadcasts a
// new Role once the PID controller's output has moved by more than
// this fraction of the current factor.
const relativeFactorChangeThreshold = 0.0001

// rebalance is one tick of the debounced adaptive-replicator loop:
// sample local memory the way stats.go's memstats() does, feed the
// PID controller, and broadcast the new factor if it moved enough to
// matter. Observer and plain Replicator roles don't drive the PID -
// their factor is either zero or fixed by configuration - but the
// gauges are kept current regardless, since they describe this peer's
// standing irrespective of how its factor got there.
func (n *Node) rebalance() {
	n.metrics.rebalanceTicks.Inc()
	n.updateGauges()

	n.mu.Lock()
	role := n.role
	n.mu.Unlock()

	if config.RoleAdaptiveReplicator != role.Kind {
		return
	}

	var memstats runtime.MemStats
	runtime.ReadMemStats(&memstats)

	newFactor := n.pidCtrl.Update(pid.Sample{
		UsedMemory:         memstats.Alloc,
		CurrentFactor:      role.Factor,
		TotalParticipation: n.ring.TotalParticipation(),
		PeerCount:          n.ring.Len(),
	})

	if !relativeChangeExceeds(role.Factor, newFactor, relativeFactorChangeThreshold) {
		return
	}

	n.SetRole(config.RoleAdaptiveReplicator, newFactor, role.Limits)
}

func relativeChangeExceeds(before, after, threshold float64) bool {
	delta := after - before
	if delta < 0 {
		delta = -delta
	}
	if 0 == before {
		return delta > threshold
	}
	return delta/before > threshold
}

func (n *Node) updateGauges() {
	n.mu.Lock()
	factor := n.role.Factor
	n.mu.Unlock()
	n.metrics.replicationFactor.Set(factor)

	leading := 0
	for _, head := range n.entries.Heads() {
		minReplicas := n.effectiveMinRLocked(head.GID, head.MinReplicas)
		if n.isLeader(head.GID, minReplicas) {
			leading += 1
		}
	}
	n.metrics.leaderGIDs.Set(float64(leading))
}
