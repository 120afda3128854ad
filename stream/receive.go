package stream

import (
	"context"
	"time"

	"github.com/bitmark-inc/peerlog/wire"
)

func (st *Stream) handlePayload(neighbor string, payload []byte) {
	if !st.limiter.allow(neighbor) {
		if nil != st.log {
			st.log.Debugf("dropping frame from %s: rate limit exceeded", neighbor)
		}
		return
	}

	frame, err := wire.DecodeFrame(payload)
	if nil != err {
		if nil != st.log {
			st.log.Debugf("undecodable frame from %s: %v", neighbor, err)
		}
		return
	}

	if !st.verify(frame) {
		if nil != st.log {
			st.log.Debugf("dropping frame from %s: signature invalid", neighbor)
		}
		return
	}

	if wire.TypeAck == frame.Type {
		st.handleAck(neighbor, frame)
		return
	}

	key := msgID(frame.Header.ID)
	firstSeen := !st.seen.Exists(key)
	st.seen.Add(key)

	msg, err := wire.DecodeMessage(frame.Body)
	if nil != err {
		if nil != st.log {
			st.log.Debugf("undecodable message body from %s: %v", neighbor, err)
		}
		return
	}

	mine, remaining := st.splitTargets(msg.To)

	// A duplicate arrival still gets acked: the sender (or a relay
	// along the path) uses the seen_counter bump to notice a
	// redundant delivery path even though this node does not
	// re-process the message.
	if mine && wire.Silent != frame.Mode {
		st.sendAck(neighbor, frame)
	}

	if !firstSeen {
		return
	}

	if frame.Header.Origin != st.transport.LocalID() {
		st.recordRelay(frame.Header.ID, neighbor)
	}

	if mine && nil != st.deliver {
		st.deliver(neighbor, frame.Header.Origin, msg)
	}

	if len(remaining) > 0 {
		st.relayFrame(neighbor, frame, msg, remaining)
	} else if wire.Seek == frame.Mode && !mine && time.Now().UnixNano() < frame.Header.Expires {
		// not a target and nothing left to route specifically toward:
		// keep the seek flood alive for neighbors further out
		st.fanoutToNeighbors(payload, neighbor)
	}
}

// splitTargets reports whether this node is itself one of to (or to
// is empty, meaning "every recipient"), and returns the remaining
// targets that still need relaying onward.
func (st *Stream) splitTargets(to []string) (bool, []string) {
	if 0 == len(to) {
		return true, nil
	}
	local := st.transport.LocalID()
	mine := false
	remaining := make([]string, 0, len(to))
	for _, t := range to {
		if t == local {
			mine = true
			continue
		}
		remaining = append(remaining, t)
	}
	return mine, remaining
}

// relayFrame forwards msg (with To trimmed to remaining) toward every
// target still outstanding, using up to frame.Redundancy candidate
// hops per target and never bouncing back through fromNeighbor.
func (st *Stream) relayFrame(fromNeighbor string, frame wire.Frame, msg wire.Message, remaining []string) {
	msg.To = remaining
	relayed := frame
	relayed.Body = wire.EncodeMessage(msg)
	payload := wire.EncodeFrame(relayed)

	for _, target := range remaining {
		hops := st.candidateHops(target, relayed.Redundancy, fromNeighbor)
		if 0 == len(hops) {
			hops = st.broadcastHops(relayed.Redundancy, fromNeighbor)
		}
		for _, hop := range hops {
			st.deliverToHop(context.Background(), target, hop, payload)
		}
	}
}
