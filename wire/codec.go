package wire

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/util"
)

func writeBytes(buf *bytes.Buffer, b []byte) {
	buf.Write(util.ToVarint64(uint64(len(b))))
	buf.Write(b)
}

func readBytes(buf *bytes.Reader) ([]byte, error) {
	n, err := readVarint(buf)
	if nil != err {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := buf.Read(b); nil != err {
		return nil, fault.ErrUndecodable
	}
	return b, nil
}

func readVarint(buf *bytes.Reader) (uint64, error) {
	var scratch [util.Varint64MaximumBytes]byte
	n := 0
	for n < len(scratch) {
		b, err := buf.ReadByte()
		if nil != err {
			return 0, fault.ErrUndecodable
		}
		scratch[n] = b
		n += 1
		if 0 == b&0x80 {
			break
		}
	}
	value, count := util.FromVarint64(scratch[:n])
	if 0 == count {
		return 0, fault.ErrUndecodable
	}
	return value, nil
}

func writeHash(buf *bytes.Buffer, h entry.Hash) {
	buf.Write(h.Bytes())
}

func readHash(buf *bytes.Reader) (entry.Hash, error) {
	b := make([]byte, entry.Length)
	if _, err := buf.Read(b); nil != err {
		return entry.Hash{}, fault.ErrUndecodable
	}
	return entry.HashFromBytes(b)
}

func writeHashes(buf *bytes.Buffer, hashes []entry.Hash) {
	buf.Write(util.ToVarint64(uint64(len(hashes))))
	for _, h := range hashes {
		writeHash(buf, h)
	}
}

func readHashes(buf *bytes.Reader) ([]entry.Hash, error) {
	n, err := readVarint(buf)
	if nil != err {
		return nil, err
	}
	hashes := make([]entry.Hash, 0, n)
	for i := uint64(0); i < n; i += 1 {
		h, err := readHash(buf)
		if nil != err {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func writeCipher(buf *bytes.Buffer, c *entry.Cipher) {
	if nil == c {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	buf.Write(c.SenderPublicKey[:])
	buf.Write(c.Nonce[:])
	writeBytes(buf, c.Ciphertext)
}

func readCipher(buf *bytes.Reader) (*entry.Cipher, error) {
	tag, err := buf.ReadByte()
	if nil != err {
		return nil, fault.ErrUndecodable
	}
	if 0 == tag {
		return nil, nil
	}
	c := &entry.Cipher{}
	if _, err := buf.Read(c.SenderPublicKey[:]); nil != err {
		return nil, fault.ErrUndecodable
	}
	if _, err := buf.Read(c.Nonce[:]); nil != err {
		return nil, fault.ErrUndecodable
	}
	ciphertext, err := readBytes(buf)
	if nil != err {
		return nil, err
	}
	c.Ciphertext = ciphertext
	return c, nil
}

func writeFloat64(buf *bytes.Buffer, f float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func readFloat64(buf *bytes.Reader) (float64, error) {
	var b [8]byte
	if _, err := buf.Read(b[:]); nil != err {
		return 0, fault.ErrUndecodable
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(buf *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := buf.Read(b[:]); nil != err {
		return 0, fault.ErrUndecodable
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(buf *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := buf.Read(b[:]); nil != err {
		return 0, fault.ErrUndecodable
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}
