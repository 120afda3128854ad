package stream

import (
	"context"
	"time"

	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/wire"
)

// PublishOptions - parameters for Publish
type PublishOptions struct {
	To         []string
	Type       wire.MessageType
	Body       []byte
	Mode       wire.DeliveryMode
	Redundancy uint8

	// TTL bounds both Header.Expires and, for Acknowledged/Seek, how
	// long Publish waits for an ack before giving up. Zero uses the
	// Stream's DefaultTTL.
	TTL time.Duration
}

// Publish frames, signs and delivers a message per its delivery mode.
//
// Silent returns immediately with no acked targets - none are
// expected. Acknowledged and Seek block until at least one target
// acks or TTL elapses; Acknowledged times out with fault.ErrTimeout,
// Seek with fault.ErrNoRoute, both returning whichever targets did
// ack (possibly none) alongside the error.
func (st *Stream) Publish(ctx context.Context, opts PublishOptions) ([]string, error) {
	ttl := opts.TTL
	if 0 == ttl {
		ttl = st.defaultTTL
	}

	now := time.Now()
	header := wire.Header{
		ID:        wire.NewHeaderID(),
		Timestamp: now.UnixNano(),
		Expires:   now.Add(ttl).UnixNano(),
		To:        opts.To,
		Origin:    st.transport.LocalID(),
	}

	frame := wire.Frame{
		Header:     header,
		Mode:       opts.Mode,
		Redundancy: opts.Redundancy,
		Type:       opts.Type,
		Body:       wire.EncodeMessage(wire.Message{Type: opts.Type, To: opts.To, Body: opts.Body}),
	}
	if err := st.sign(&frame); nil != err {
		return nil, err
	}

	st.seen.Add(msgID(frame.Header.ID))

	var waiter *ackWaiter
	if wire.Silent != opts.Mode {
		waiter = st.acks.register(frame.Header.ID, opts.To)
		defer st.acks.forget(frame.Header.ID)
	}

	payload := wire.EncodeFrame(frame)

	switch opts.Mode {
	case wire.Silent:
		st.sendToTargets(ctx, opts.To, maxUint8(opts.Redundancy, 1), payload)
		return nil, nil

	case wire.Acknowledged:
		st.sendToTargets(ctx, opts.To, maxUint8(opts.Redundancy, 1), payload)
		return st.awaitAck(ctx, waiter, ttl, fault.ErrTimeout)

	case wire.Seek:
		st.fanoutToNeighbors(payload, "")
		return st.awaitAck(ctx, waiter, ttl, fault.ErrNoRoute)
	}

	return nil, fault.ErrUndecodable
}

func (st *Stream) awaitAck(ctx context.Context, waiter *ackWaiter, ttl time.Duration, onEmpty error) ([]string, error) {
	timer := time.NewTimer(ttl)
	defer timer.Stop()

	select {
	case <-waiter.done:
		return waiter.ackedTargets(), nil
	case <-timer.C:
		acked := waiter.ackedTargets()
		if 0 == len(acked) {
			return nil, onEmpty
		}
		return acked, nil
	case <-ctx.Done():
		return waiter.ackedTargets(), ctx.Err()
	}
}

func (st *Stream) sign(frame *wire.Frame) error {
	if nil == st.keystore || 0 == len(st.signingKey.PublicKey) {
		return nil
	}
	sig, err := st.keystore.Sign(frame.SigningBytes())
	if nil != err {
		return err
	}
	frame.Signatures = []wire.HeaderSignature{{Key: st.signingKey.PublicKey, Signature: []byte(sig)}}
	return nil
}

func maxUint8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
