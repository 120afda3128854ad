package wire

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/util"
)

// EncodeEntry - serialize a complete entry (including its hash and
// signatures, which entry.CanonicalBytes deliberately excludes) for
// transmission
func EncodeEntry(e *entry.Entry) []byte {
	var buf bytes.Buffer

	writeHash(&buf, e.Hash)

	writeBytes(&buf, []byte(e.GID))
	buf.Write(util.ToVarint64(uint64(e.MinReplicas)))

	writeCipher(&buf, e.IdentityCipher)
	writeBytes(&buf, e.Identity)

	writeCipher(&buf, e.ClockCipher)
	buf.Write(util.ToVarint64(e.Clock.Time))
	writeBytes(&buf, e.Clock.ID)

	if e.PayloadEncrypted {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeBytes(&buf, e.Payload)

	writeHashes(&buf, e.Next)
	writeHashes(&buf, e.Refs)

	buf.Write(util.ToVarint64(uint64(len(e.Signatures))))
	for _, sig := range e.Signatures {
		writeBytes(&buf, []byte(sig))
	}

	return buf.Bytes()
}

// DecodeEntry - inverse of EncodeEntry
func DecodeEntry(buffer []byte) (*entry.Entry, error) {
	r := bytes.NewReader(buffer)

	hash, err := readHash(r)
	if nil != err {
		return nil, err
	}

	gid, err := readBytes(r)
	if nil != err {
		return nil, err
	}
	minReplicas, err := readVarint(r)
	if nil != err {
		return nil, err
	}

	identityCipher, err := readCipher(r)
	if nil != err {
		return nil, err
	}
	identity, err := readBytes(r)
	if nil != err {
		return nil, err
	}

	clockCipher, err := readCipher(r)
	if nil != err {
		return nil, err
	}
	clockTime, err := readVarint(r)
	if nil != err {
		return nil, err
	}
	clockID, err := readBytes(r)
	if nil != err {
		return nil, err
	}

	payloadEncryptedTag, err := r.ReadByte()
	if nil != err {
		return nil, fault.ErrUndecodable
	}
	payload, err := readBytes(r)
	if nil != err {
		return nil, err
	}

	next, err := readHashes(r)
	if nil != err {
		return nil, err
	}
	refs, err := readHashes(r)
	if nil != err {
		return nil, err
	}

	sigCount, err := readVarint(r)
	if nil != err {
		return nil, err
	}
	signatures := make([]entry.Signature, 0, sigCount)
	for i := uint64(0); i < sigCount; i += 1 {
		sig, err := readBytes(r)
		if nil != err {
			return nil, err
		}
		signatures = append(signatures, entry.Signature(sig))
	}

	return &entry.Entry{
		Hash:             hash,
		Next:             next,
		Refs:             refs,
		Clock:            entry.Clock{ID: clockID, Time: clockTime},
		ClockCipher:      clockCipher,
		GID:              string(gid),
		MinReplicas:      uint32(minReplicas),
		Payload:          payload,
		PayloadEncrypted: 1 == payloadEncryptedTag,
		Identity:         identity,
		IdentityCipher:   identityCipher,
		Signatures:       signatures,
	}, nil
}
