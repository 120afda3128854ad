package wire

import (
	"bytes"
	"crypto/rand"

	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/util"
)

// DeliveryMode - the three direct-stream delivery semantics, tag byte
// first on the wire, followed by a redundancy byte.
type DeliveryMode byte

const (
	Silent       DeliveryMode = 0
	Acknowledged DeliveryMode = 1
	Seek         DeliveryMode = 2
)

// HeaderSignature - a (key, signature) pair; a Frame can carry more
// than one when relays co-sign it on the way through.
type HeaderSignature struct {
	Key       []byte
	Signature []byte
}

// Header - the fields every direct-stream frame carries ahead of its
// body. Signatures cover everything in the frame except To and
// Signatures themselves.
type Header struct {
	ID        [32]byte
	Timestamp int64
	Expires   int64
	To        []string
	Origin    string // optional: sender identity, used by ACK frames for route learning
}

// NewHeaderID - a fresh random 32-byte frame id
func NewHeaderID() [32]byte {
	var id [32]byte
	_, _ = rand.Read(id[:])
	return id
}

// Frame - a complete on-wire transport message: header, delivery mode
// plus redundancy, and a type-tagged body.
type Frame struct {
	Header     Header
	Mode       DeliveryMode
	Redundancy uint8
	Type       MessageType
	Body       []byte
	Signatures []HeaderSignature
}

// SigningBytes - the bytes a Frame's signatures are computed over:
// everything except Header.To and Signatures.
func (f Frame) SigningBytes() []byte {
	var buf bytes.Buffer
	buf.Write(f.Header.ID[:])
	writeInt64(&buf, f.Header.Timestamp)
	writeInt64(&buf, f.Header.Expires)
	writeBytes(&buf, []byte(f.Header.Origin))
	buf.WriteByte(byte(f.Mode))
	buf.WriteByte(f.Redundancy)
	buf.WriteByte(byte(f.Type))
	writeBytes(&buf, f.Body)
	return buf.Bytes()
}

// EncodeFrame - serialize a Frame
func EncodeFrame(f Frame) []byte {
	var buf bytes.Buffer

	buf.Write(f.Header.ID[:])
	writeInt64(&buf, f.Header.Timestamp)
	writeInt64(&buf, f.Header.Expires)
	writeBytes(&buf, []byte(f.Header.Origin))

	buf.Write(util.ToVarint64(uint64(len(f.Header.To))))
	for _, to := range f.Header.To {
		writeBytes(&buf, []byte(to))
	}

	buf.WriteByte(byte(f.Mode))
	buf.WriteByte(f.Redundancy)
	buf.WriteByte(byte(f.Type))
	writeBytes(&buf, f.Body)

	buf.Write(util.ToVarint64(uint64(len(f.Signatures))))
	for _, sig := range f.Signatures {
		writeBytes(&buf, sig.Key)
		writeBytes(&buf, sig.Signature)
	}

	return buf.Bytes()
}

// DecodeFrame - inverse of EncodeFrame
func DecodeFrame(buffer []byte) (Frame, error) {
	r := bytes.NewReader(buffer)

	var f Frame
	if _, err := r.Read(f.Header.ID[:]); nil != err {
		return Frame{}, fault.ErrUndecodable
	}

	ts, err := readInt64(r)
	if nil != err {
		return Frame{}, err
	}
	f.Header.Timestamp = ts

	expires, err := readInt64(r)
	if nil != err {
		return Frame{}, err
	}
	f.Header.Expires = expires

	origin, err := readBytes(r)
	if nil != err {
		return Frame{}, err
	}
	f.Header.Origin = string(origin)

	toCount, err := readVarint(r)
	if nil != err {
		return Frame{}, err
	}
	to := make([]string, 0, toCount)
	for i := uint64(0); i < toCount; i += 1 {
		b, err := readBytes(r)
		if nil != err {
			return Frame{}, err
		}
		to = append(to, string(b))
	}
	f.Header.To = to

	mode, err := r.ReadByte()
	if nil != err {
		return Frame{}, fault.ErrUndecodable
	}
	f.Mode = DeliveryMode(mode)

	redundancy, err := r.ReadByte()
	if nil != err {
		return Frame{}, fault.ErrUndecodable
	}
	f.Redundancy = redundancy

	typ, err := r.ReadByte()
	if nil != err {
		return Frame{}, fault.ErrUndecodable
	}
	f.Type = MessageType(typ)

	body, err := readBytes(r)
	if nil != err {
		return Frame{}, err
	}
	f.Body = body

	sigCount, err := readVarint(r)
	if nil != err {
		return Frame{}, err
	}
	sigs := make([]HeaderSignature, 0, sigCount)
	for i := uint64(0); i < sigCount; i += 1 {
		key, err := readBytes(r)
		if nil != err {
			return Frame{}, err
		}
		sig, err := readBytes(r)
		if nil != err {
			return Frame{}, err
		}
		sigs = append(sigs, HeaderSignature{Key: key, Signature: sig})
	}
	f.Signatures = sigs

	return f, nil
}
