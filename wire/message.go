package wire

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/util"
)

// MessageType - the tag byte identifying a Message's Body encoding
type MessageType byte

const (
	TypeEntry          MessageType = 1
	TypeExchangeHeads  MessageType = 2
	TypeRequestIPrune  MessageType = 3
	TypeResponseIPrune MessageType = 4
	TypeRole           MessageType = 5
	TypeAck            MessageType = 6
	TypeHello          MessageType = 7
	TypeGoodbye        MessageType = 8
)

// Message - the header+body envelope every direct-stream frame is
// wrapped in; To carries the target hashes used for source routing
type Message struct {
	Type MessageType
	To   []string
	Body []byte
}

// EncodeMessage - serialize a Message
func EncodeMessage(m Message) []byte {
	var buf bytes.Buffer

	buf.WriteByte(byte(m.Type))

	buf.Write(util.ToVarint64(uint64(len(m.To))))
	for _, to := range m.To {
		writeBytes(&buf, []byte(to))
	}

	writeBytes(&buf, m.Body)

	return buf.Bytes()
}

// DecodeMessage - inverse of EncodeMessage
func DecodeMessage(buffer []byte) (Message, error) {
	r := bytes.NewReader(buffer)

	tag, err := r.ReadByte()
	if nil != err {
		return Message{}, err
	}

	count, err := readVarint(r)
	if nil != err {
		return Message{}, err
	}
	to := make([]string, 0, count)
	for i := uint64(0); i < count; i += 1 {
		b, err := readBytes(r)
		if nil != err {
			return Message{}, err
		}
		to = append(to, string(b))
	}

	body, err := readBytes(r)
	if nil != err {
		return Message{}, err
	}

	return Message{Type: MessageType(tag), To: to, Body: body}, nil
}
