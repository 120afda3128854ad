package stream

import (
	"context"
	"time"

	"github.com/bitmark-inc/peerlog/wire"
)

// verify checks a frame's signatures. A Stream with no keystore
// configured trusts every frame (used by tests running an unsigned
// mesh); otherwise at least one valid signature is required.
//
// An Ack's SeenCounter is bumped in place by every relay it passes
// through without being re-signed (see wire.EncodeAckForSigning), so
// verification checks the signature against the counter zeroed out
// rather than against the wire bytes as received.
func (st *Stream) verify(frame wire.Frame) bool {
	if nil == st.keystore {
		return true
	}
	if 0 == len(frame.Signatures) {
		return false
	}

	signingBytes := frame.SigningBytes()
	if wire.TypeAck == frame.Type {
		ack, err := wire.DecodeAck(frame.Body)
		if nil != err {
			return false
		}
		zeroed := frame
		zeroed.Body = wire.EncodeAckForSigning(ack)
		signingBytes = zeroed.SigningBytes()
	}

	for _, sig := range frame.Signatures {
		if !st.keystore.Verify(sig.Signature, sig.Key, signingBytes) {
			return false
		}
	}
	return true
}

// sendAck acknowledges frame straight back to neighbor, the hop it
// arrived on - this node is frame's target, so neighbor is by
// definition the reverse hop toward its origin.
func (st *Stream) sendAck(neighbor string, frame wire.Frame) {
	counter := st.bumpSeenCounter(msgID(frame.Header.ID))
	ack := wire.Ack{AckOf: frame.Header.ID, SeenCounter: counter}

	ackFrame := wire.Frame{
		Header: wire.Header{
			ID:        wire.NewHeaderID(),
			Timestamp: time.Now().UnixNano(),
			Expires:   frame.Header.Expires,
			Origin:    st.transport.LocalID(),
		},
		Mode: wire.Silent,
		Type: wire.TypeAck,
		Body: wire.EncodeAck(ack),
	}
	if err := st.signAck(&ackFrame, ack); nil != err {
		if nil != st.log {
			st.log.Debugf("sign ack: %v", err)
		}
		return
	}

	st.deliverToHop(context.Background(), neighbor, neighbor, wire.EncodeFrame(ackFrame))
}

func (st *Stream) signAck(frame *wire.Frame, ack wire.Ack) error {
	if nil == st.keystore || 0 == len(st.signingKey.PublicKey) {
		return nil
	}
	signing := *frame
	signing.Body = wire.EncodeAckForSigning(ack)
	sig, err := st.keystore.Sign(signing.SigningBytes())
	if nil != err {
		return err
	}
	frame.Signatures = []wire.HeaderSignature{{Key: st.signingKey.PublicKey, Signature: []byte(sig)}}
	return nil
}

// handleAck processes an incoming Ack: resolves any local Publish
// waiting on it, learns the route to the acking peer, and continues
// propagating the ack back toward that frame's original sender if
// this node was itself only relaying it.
func (st *Stream) handleAck(neighbor string, frame wire.Frame) {
	ack, err := wire.DecodeAck(frame.Body)
	if nil != err {
		return
	}

	// frame.Header.Origin is the identity of the peer that actually
	// generated the ack; neighbor is only the hop it arrived from,
	// which may be a relay several steps closer than the real target.
	st.acks.deliver(ack.AckOf, frame.Header.Origin)

	info, relayed := st.relayLookup(ack.AckOf)
	if !relayed {
		return
	}

	if "" != frame.Header.Origin && nil != st.route {
		st.route.Record(frame.Header.Origin, neighbor, time.Since(info.sentAt))
	}

	ack.SeenCounter = st.bumpSeenCounter(msgID(ack.AckOf))
	forwarded := frame
	forwarded.Body = wire.EncodeAck(ack)
	st.deliverToHop(context.Background(), frame.Header.Origin, info.reverseHop, wire.EncodeFrame(forwarded))
}

func (st *Stream) recordRelay(id [32]byte, reverseHop string) {
	st.relayMu.Lock()
	defer st.relayMu.Unlock()
	st.relayedFrom[id] = relayInfo{reverseHop: reverseHop, sentAt: time.Now()}
	if len(st.relayedFrom) > 2*dedupCapacity {
		for k := range st.relayedFrom {
			if !st.seen.Exists(msgID(k)) {
				delete(st.relayedFrom, k)
			}
		}
	}
}

func (st *Stream) relayLookup(id [32]byte) (relayInfo, bool) {
	st.relayMu.Lock()
	defer st.relayMu.Unlock()
	info, ok := st.relayedFrom[id]
	return info, ok
}
