package wire

import "bytes"

// Presence - a gid-topic gossip announcement: "this peer currently
// holds entries for this gid, dial it at this address", published so
// a node that becomes a leader for a gid it has never touched before
// can find the rest of that gid's replica set without already being
// in their direct-stream mesh.
type Presence struct {
	PeerID  string
	Address string
}

// EncodePresence - serialize a Presence
func EncodePresence(p Presence) []byte {
	var buf bytes.Buffer
	writeBytes(&buf, []byte(p.PeerID))
	writeBytes(&buf, []byte(p.Address))
	return buf.Bytes()
}

// DecodePresence - inverse of EncodePresence
func DecodePresence(buffer []byte) (Presence, error) {
	r := bytes.NewReader(buffer)

	peerID, err := readBytes(r)
	if nil != err {
		return Presence{}, err
	}
	address, err := readBytes(r)
	if nil != err {
		return Presence{}, err
	}

	return Presence{PeerID: string(peerID), Address: string(address)}, nil
}
