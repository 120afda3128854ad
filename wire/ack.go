package wire

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/fault"
)

// Ack - acknowledges delivery of the frame identified by AckOf,
// carrying the number of times the acking peer has now seen that
// frame id (SeenCounter) so the sender can detect redundant delivery
// paths.
type Ack struct {
	AckOf       [32]byte
	SeenCounter uint32
}

// EncodeAck - serialize an Ack
func EncodeAck(a Ack) []byte {
	var buf bytes.Buffer
	buf.Write(a.AckOf[:])
	writeUint32(&buf, a.SeenCounter)
	return buf.Bytes()
}

// EncodeAckForSigning - EncodeAck with SeenCounter zeroed.
//
// SeenCounter is bumped by every relay that has already seen the
// acked frame, after the Ack itself was signed by its origin; zeroing
// it before computing the signature and patching the real value back
// in on the receive side (see stream.Stream's ack handling) lets
// relays increment it without invalidating the signature. Preserved
// as-is per the distilled spec's pinned "possibly-buggy source
// behavior" note — not something this repo tries to fix.
func EncodeAckForSigning(a Ack) []byte {
	a.SeenCounter = 0
	return EncodeAck(a)
}

// DecodeAck - inverse of EncodeAck
func DecodeAck(buffer []byte) (Ack, error) {
	r := bytes.NewReader(buffer)
	var a Ack
	if _, err := r.Read(a.AckOf[:]); nil != err {
		return Ack{}, fault.ErrUndecodable
	}
	counter, err := readUint32(r)
	if nil != err {
		return Ack{}, err
	}
	a.SeenCounter = counter
	return a, nil
}
