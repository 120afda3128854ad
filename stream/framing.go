package stream

import (
	"bufio"
	"io"

	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/util"
)

// writeRecord writes a varint length prefix followed by payload -
// the same length-prefixed-record idiom wire uses for nested fields,
// applied here at the connection level since the frame boundary has
// to survive a raw io.ReadWriteCloser with no message framing of its
// own.
func writeRecord(w io.Writer, payload []byte) error {
	if _, err := w.Write(util.ToVarint64(uint64(len(payload)))); nil != err {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readRecord(r *bufio.Reader) ([]byte, error) {
	var scratch [util.Varint64MaximumBytes]byte
	n := 0
	for n < len(scratch) {
		b, err := r.ReadByte()
		if nil != err {
			return nil, err
		}
		scratch[n] = b
		n += 1
		if 0 == b&0x80 {
			break
		}
	}
	length, count := util.FromVarint64(scratch[:n])
	if 0 == count {
		return nil, fault.ErrUndecodable
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); nil != err {
		return nil, err
	}
	return buf, nil
}
