package entry

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/util"
)

// canonical bytes layout, grounded on the teacher's own manual
// byte-packing style (p2p/pack.go): every variable-length field is a
// varint length prefix followed by the raw bytes, in a fixed field
// order; Hash and Signatures are never part of this encoding.
func writeBytes(buf *bytes.Buffer, b []byte) {
	buf.Write(util.ToVarint64(uint64(len(b))))
	buf.Write(b)
}

func writeHashes(buf *bytes.Buffer, hashes []Hash) {
	buf.Write(util.ToVarint64(uint64(len(hashes))))
	for _, h := range hashes {
		buf.Write(h.Bytes())
	}
}

func writeCipher(buf *bytes.Buffer, c *Cipher) {
	if nil == c {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	buf.Write(c.SenderPublicKey[:])
	buf.Write(c.Nonce[:])
	writeBytes(buf, c.Ciphertext)
}

// CanonicalBytes - the reproducible serialization hashed to form
// Hash and signed to form Signatures; Hash and Signatures themselves
// are excluded
func (e *Entry) CanonicalBytes() []byte {
	var buf bytes.Buffer

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

	return buf.Bytes()
}
