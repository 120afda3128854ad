package sharedlog

import (
	"context"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/entrylog"
	"github.com/bitmark-inc/peerlog/stream"
	"github.com/bitmark-inc/peerlog/wire"
)

// Append extends the local Log and distributes the new entry to its
// leaders: if this peer is itself one of them, the others are told
// via Silent delivery (redundancy 1, hot path - routes are already
// known leader-to-leader); otherwise the whole leader set is told via
// Acknowledged delivery, since at least one of them must confirm it
// actually stored the entry.
func (n *Node) Append(ctx context.Context, opts entrylog.AppendOptions) (*entry.Entry, error) {
	e, err := n.entries.Append(opts)
	if nil != err {
		return nil, err
	}

	leaders := n.leadersFor(e.GID, e.MinReplicas)
	n.effectiveMinRLocked(e.GID, e.MinReplicas)

	if 0 == len(leaders) {
		return e, nil
	}

	others := make([]string, 0, len(leaders))
	selfLeader := false
	for _, l := range leaders {
		if l == n.localID {
			selfLeader = true
			continue
		}
		others = append(others, l)
	}

	if selfLeader {
		n.sendExchangeHeads(ctx, others, []*entry.Entry{e})
		return e, nil
	}

	_, pubErr := n.stream.Publish(ctx, stream.PublishOptions{
		To:         leaders,
		Type:       wire.TypeExchangeHeads,
		Body:       wire.EncodeExchangeHeads([]*entry.Entry{e}),
		Mode:       wire.Acknowledged,
		Redundancy: 1,
	})
	return e, pubErr
}

// sendExchangeHeads publishes heads to targets via Silent delivery,
// best-effort - used when the sender is itself already a confirmed
// leader telling its peers, not waiting to learn whether delivery
// succeeded.
func (n *Node) sendExchangeHeads(ctx context.Context, targets []string, heads []*entry.Entry) {
	if 0 == len(targets) || 0 == len(heads) {
		return
	}
	_, _ = n.stream.Publish(ctx, stream.PublishOptions{
		To:         targets,
		Type:       wire.TypeExchangeHeads,
		Body:       wire.EncodeExchangeHeads(heads),
		Mode:       wire.Silent,
		Redundancy: 1,
	})
}
