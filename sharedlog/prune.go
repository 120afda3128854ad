package sharedlog

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/messagebus"
	"github.com/bitmark-inc/peerlog/stream"
	"github.com/bitmark-inc/peerlog/wire"
)

// pruneRound tracks one gid's in-flight RequestIPrune/ResponseIPrune
// exchange: the hashes up for pruning, and which distinct peers have
// confirmed holding each one so far.
type pruneRound struct {
	gid        string
	hashes     []entry.Hash
	minConfirm int

	mu        sync.Mutex
	confirmed map[string]map[entry.Hash]bool
	done      chan struct{}
	closed    bool
}

func newPruneRound(gid string, hashes []entry.Hash, minConfirm int) *pruneRound {
	if minConfirm < 1 {
		minConfirm = 1
	}
	return &pruneRound{
		gid:        gid,
		hashes:     hashes,
		minConfirm: minConfirm,
		confirmed:  make(map[string]map[entry.Hash]bool),
		done:       make(chan struct{}),
	}
}

func (r *pruneRound) recordResponse(from string, hashes []entry.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	set, ok := r.confirmed[from]
	if !ok {
		set = make(map[entry.Hash]bool)
		r.confirmed[from] = set
	}
	for _, h := range hashes {
		set[h] = true
	}
	if r.quorumReachedLocked() {
		r.closed = true
		close(r.done)
	}
}

func (r *pruneRound) quorumReachedLocked() bool {
	for _, h := range r.hashes {
		count := 0
		for _, set := range r.confirmed {
			if set[h] {
				count += 1
			}
		}
		if count < r.minConfirm {
			return false
		}
	}
	return true
}

func (r *pruneRound) isQuorumReached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quorumReachedLocked()
}

// scheduleLocalPrune starts (or leaves running, if already in flight)
// a RequestIPrune round for every entry this peer currently holds
// under gid.
func (n *Node) scheduleLocalPrune(gid string) {
	n.pruneMu.Lock()
	if _, inFlight := n.pruneRounds[gid]; inFlight {
		n.pruneMu.Unlock()
		return
	}

	held := n.entries.EntriesByGID(gid)
	if 0 == len(held) {
		n.pruneMu.Unlock()
		return
	}
	hashes := make([]entry.Hash, len(held))
	for i, e := range held {
		hashes[i] = e.Hash
	}

	minConfirm := int(n.effectiveMinRLocked(gid, 0))
	round := newPruneRound(gid, hashes, minConfirm)
	n.pruneRounds[gid] = round
	n.pruneMu.Unlock()

	n.wg.Add(1)
	go n.runPruneRound(round)
}

// runPruneRound re-broadcasts RequestIPrune every PruneConfirmTimeout
// until a quorum of ResponseIPrune confirmations arrives (or shutdown
// cuts it short), then removes the confirmed entries.
func (n *Node) runPruneRound(round *pruneRound) {
	defer n.wg.Done()

	for {
		n.broadcastRequestIPrune(round)

		timer := time.NewTimer(n.cfg.PruneConfirmTimeout)
		select {
		case <-round.done:
			timer.Stop()
		case <-timer.C:
		case <-n.shutdown:
			timer.Stop()
			n.finishPruneRound(round, false)
			return
		}

		if round.isQuorumReached() {
			break
		}
	}
	n.finishPruneRound(round, true)
}

func (n *Node) finishPruneRound(round *pruneRound, prune bool) {
	n.pruneMu.Lock()
	delete(n.pruneRounds, round.gid)
	n.pruneMu.Unlock()

	if !prune {
		return
	}

	removed := n.entries.Prune(round.hashes)
	if removed > 0 {
		messagebus.Bus.PruneCompleted.Send("pruned", []byte(round.gid))
	}
	n.metrics.pruneRounds.Inc()
}

func (n *Node) broadcastRequestIPrune(round *pruneRound) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.cfg.PruneConfirmTimeout)
		defer cancel()
		_, _ = n.stream.Publish(ctx, stream.PublishOptions{
			Type:       wire.TypeRequestIPrune,
			Body:       wire.EncodeRequestIPrune(round.hashes),
			Mode:       wire.Seek,
			Redundancy: 1,
			TTL:        n.cfg.PruneConfirmTimeout,
		})
	}()
}

// onRequestIPrune responds with ResponseIPrune for every hash this
// peer both holds and currently confirms leadership for; hashes it
// doesn't hold, or isn't a confirmed leader for, are left out of the
// response silently rather than answered with a negative.
func (n *Node) onRequestIPrune(origin string, body []byte) {
	hashes, err := wire.DecodeRequestIPrune(body)
	if nil != err {
		if nil != n.log {
			n.log.Debugf("undecodable RequestIPrune from %s: %v", origin, err)
		}
		return
	}

	var confirmed []entry.Hash
	for _, h := range hashes {
		e, ok := n.entries.Get(h)
		if !ok {
			continue
		}
		minReplicas := n.effectiveMinRLocked(e.GID, e.MinReplicas)
		if n.isLeader(e.GID, minReplicas) {
			confirmed = append(confirmed, h)
		}
	}
	if 0 == len(confirmed) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.AutoDialRetry)
	defer cancel()
	_, _ = n.stream.Publish(ctx, stream.PublishOptions{
		To:         []string{origin},
		Type:       wire.TypeResponseIPrune,
		Body:       wire.EncodeResponseIPrune(confirmed),
		Mode:       wire.Silent,
		Redundancy: 1,
	})
}

// onResponseIPrune feeds a confirmation into every in-flight round
// whose hash set overlaps it - normally exactly one, since pruning
// rounds operate per gid and hashes don't cross gids.
func (n *Node) onResponseIPrune(origin string, body []byte) {
	hashes, err := wire.DecodeResponseIPrune(body)
	if nil != err {
		if nil != n.log {
			n.log.Debugf("undecodable ResponseIPrune from %s: %v", origin, err)
		}
		return
	}

	n.pruneMu.Lock()
	rounds := make([]*pruneRound, 0, len(n.pruneRounds))
	for _, r := range n.pruneRounds {
		rounds = append(rounds, r)
	}
	n.pruneMu.Unlock()

	for _, round := range rounds {
		var matching []entry.Hash
		for _, h := range hashes {
			if containsHash(round.hashes, h) {
				matching = append(matching, h)
			}
		}
		if len(matching) > 0 {
			round.recordResponse(origin, matching)
		}
	}
}

func containsHash(list []entry.Hash, h entry.Hash) bool {
	for _, v := range list {
		if v == h {
			return true
		}
	}
	return false
}
