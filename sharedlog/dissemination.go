package sharedlog

import (
	"context"
	"fmt"
	"time"

	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/messagebus"
	"github.com/bitmark-inc/peerlog/ring"
	"github.com/bitmark-inc/peerlog/stream"
	"github.com/bitmark-inc/peerlog/util"
	"github.com/bitmark-inc/peerlog/wire"
)

// SetRole applies an explicit role transition (Observer <-> Replicator,
// or a new AdaptiveReplicator factor), matching the state machine's
// "any role change -> broadcast, ring update, distribution pass" rule.
func (n *Node) SetRole(kind config.Role, factor float64, limits config.Replicas) {
	n.mu.Lock()
	n.role = RoleState{Kind: kind, Factor: factor, Limits: limits, Timestamp: time.Now()}
	n.mu.Unlock()

	n.applyOwnRole()
}

func (n *Node) applyOwnRole() {
	n.mu.Lock()
	role := n.role
	n.mu.Unlock()

	if nil != n.log {
		util.LogInfo(n.log, util.CoYellow, fmt.Sprintf("enter role %s, factor %.2f", role.Kind, role.Factor))
	}

	n.ring.Update(ring.Range{
		Peer:      n.localID,
		Offset:    ring.HashToUnit(n.localID),
		Factor:    role.Factor,
		Timestamp: role.Timestamp,
	})

	messagebus.Bus.RoleChanged.Send(string(role.Kind), []byte(n.localID))

	n.broadcastRole(role)
	n.distributionPass()
}

// broadcastRole seeks the network with the current role, redundancy
// 1, best-effort (a role announcement that nobody acks within its
// default TTL is simply dropped - recipients that come online later
// learn the ring state via the next role change or a distribution
// pass's ExchangeHeads anyway).
func (n *Node) broadcastRole(role RoleState) {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.AutoDialRetry)
	defer cancel()
	_, _ = n.stream.Publish(ctx, stream.PublishOptions{
		Type: wire.TypeRole,
		Body: wire.EncodeRole(wire.Role{
			Role:      string(role.Kind),
			Factor:    role.Factor,
			Timestamp: role.Timestamp.UnixNano(),
		}),
		Mode:       wire.Seek,
		Redundancy: 1,
	})
}

// onRoleAnnouncement integrates a peer's role broadcast into the
// ring. A role whose timestamp is not strictly newer than the one
// already recorded for that peer is ignored, matching the distilled
// spec's stale-update rule.
func (n *Node) onRoleAnnouncement(from string, body []byte, isGoodbye bool) {
	role, err := wire.DecodeRole(body)
	if nil != err {
		if nil != n.log {
			n.log.Debugf("undecodable role from %s: %v", from, err)
		}
		return
	}

	if existing, ok := n.ring.Get(from); ok {
		if role.Timestamp <= existing.Timestamp.UnixNano() {
			return
		}
	}

	if isGoodbye || 0 == role.Factor {
		if nil != n.log {
			util.LogInfo(n.log, util.CoYellow, fmt.Sprintf("peer %s left the ring (role %s)", from, role.Role))
		}
		n.ring.Remove(from)
	} else {
		n.ring.Update(ring.Range{
			Peer:      from,
			Offset:    ring.HashToUnit(from),
			Factor:    role.Factor,
			Timestamp: time.Unix(0, role.Timestamp),
		})
	}

	n.distributionPass()
}

// distributionPass recomputes leaders for every gid in the local
// heads after a membership change: new leaders not in the previously
// cached set get an ExchangeHeads; if the local peer left a gid's
// leader set it schedules its own entries for that gid for pruning.
func (n *Node) distributionPass() {
	for _, head := range n.entries.Heads() {
		gid := head.GID
		n.ensureGidSubscription(gid)

		minReplicas := n.effectiveMinRLocked(gid, head.MinReplicas)

		leaders := n.leadersFor(gid, minReplicas)

		n.mu.Lock()
		previous := n.previousLeaders[gid]
		n.previousLeaders[gid] = leaders
		n.mu.Unlock()

		stillLeader := false
		for _, l := range leaders {
			if l == n.localID {
				stillLeader = true
			}
		}

		if stillLeader {
			for _, l := range leaders {
				if l == n.localID || containsString(previous, l) {
					continue
				}
				n.sendExchangeHeadsTo(l, gid)
			}
		} else if containsString(previous, n.localID) {
			n.scheduleLocalPrune(gid)
		}
	}
}

func (n *Node) effectiveMinRLocked(gid string, candidate uint32) uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, ok := n.effectiveMinR[gid]; ok && existing > candidate {
		candidate = existing
	}
	n.effectiveMinR[gid] = candidate
	return candidate
}

func containsString(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
