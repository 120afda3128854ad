package sharedlog

import (
	"context"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/messagebus"
	"github.com/bitmark-inc/peerlog/wire"
)

// onExchangeHeads handles an incoming ExchangeHeads: group by gid,
// and for each group either join it (as a confirmed leader, or as a
// peer that already holds an ancestor and wants to keep causal
// history) or drop it.
func (n *Node) onExchangeHeads(origin string, body []byte) {
	heads, err := wire.DecodeExchangeHeads(body)
	if nil != err {
		if nil != n.log {
			n.log.Debugf("undecodable ExchangeHeads from %s: %v", origin, err)
		}
		return
	}
	n.metrics.exchangeHeadsRX.Inc()

	byGID := make(map[string][]*entry.Entry)
	for _, e := range heads {
		byGID[e.GID] = append(byGID[e.GID], e)
	}
	for gid, group := range byGID {
		n.handleExchangeHeadsGroup(origin, gid, group)
	}
}

func (n *Node) handleExchangeHeadsGroup(origin, gid string, group []*entry.Entry) {
	var maxMinReplicas uint32
	for _, e := range group {
		if e.MinReplicas > maxMinReplicas {
			maxMinReplicas = e.MinReplicas
		}
	}
	effective := n.effectiveMinRLocked(gid, maxMinReplicas)

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.WaitForReplicatorTimeout)
	defer cancel()

	becameLeader := n.waitForIsLeader(ctx, gid, effective, n.cfg.WaitForReplicatorTimeout)
	hasAncestor := n.holdsAncestorOf(group)

	if !becameLeader && !hasAncestor {
		return
	}

	added := n.entries.Join(group, nil, 0)
	if added > 0 {
		messagebus.Bus.JoinCompleted.Send(gid, []byte(origin))
	}

	if !becameLeader {
		n.scheduleLocalPrune(gid)
		return
	}

	n.opportunisticPrune(gid, effective)
}

// holdsAncestorOf reports whether this peer already has any direct
// parent or reference of any entry in group, i.e. whether joining
// these heads would extend a causal chain it's already part of.
func (n *Node) holdsAncestorOf(group []*entry.Entry) bool {
	for _, e := range group {
		for _, p := range e.Next {
			if _, ok := n.entries.Get(p); ok {
				return true
			}
		}
		for _, p := range e.Refs {
			if _, ok := n.entries.Get(p); ok {
				return true
			}
		}
	}
	return false
}

// opportunisticPrune re-checks leadership for gid at its latest
// effective min_replicas once a join lowers it below what it used to
// be, dropping entries this peer no longer needs to hold.
func (n *Node) opportunisticPrune(gid string, minReplicas uint32) {
	leaders := n.leadersFor(gid, minReplicas)
	if !containsString(leaders, n.localID) {
		n.scheduleLocalPrune(gid)
	}
}

// sendExchangeHeadsTo publishes every locally-held head for gid to a
// single target via Silent delivery, redundancy 1 - the append path's
// and distribution pass's common leader-to-leader hot path.
func (n *Node) sendExchangeHeadsTo(target, gid string) {
	var heads []*entry.Entry
	for _, h := range n.entries.Heads() {
		if gid == h.GID {
			heads = append(heads, h)
		}
	}
	if 0 == len(heads) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.AutoDialRetry)
	defer cancel()
	n.sendExchangeHeads(ctx, []string{target}, heads)
}
