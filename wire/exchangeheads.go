package wire

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/util"
)

// EncodeExchangeHeads - serialize a batch of head entries disseminated
// between leaders
func EncodeExchangeHeads(heads []*entry.Entry) []byte {
	var buf bytes.Buffer
	buf.Write(util.ToVarint64(uint64(len(heads))))
	for _, e := range heads {
		writeBytes(&buf, EncodeEntry(e))
	}
	return buf.Bytes()
}

// DecodeExchangeHeads - inverse of EncodeExchangeHeads
func DecodeExchangeHeads(buffer []byte) ([]*entry.Entry, error) {
	r := bytes.NewReader(buffer)

	count, err := readVarint(r)
	if nil != err {
		return nil, err
	}
	heads := make([]*entry.Entry, 0, count)
	for i := uint64(0); i < count; i += 1 {
		raw, err := readBytes(r)
		if nil != err {
			return nil, err
		}
		e, err := DecodeEntry(raw)
		if nil != err {
			return nil, err
		}
		heads = append(heads, e)
	}
	return heads, nil
}
