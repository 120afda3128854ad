package wire

import (
	"bytes"

	"github.com/bitmark-inc/peerlog/entry"
)

// EncodeRequestIPrune - serialize the hash list a peer wants to shed,
// broadcast when it is no longer a leader for them
func EncodeRequestIPrune(hashes []entry.Hash) []byte {
	var buf bytes.Buffer
	writeHashes(&buf, hashes)
	return buf.Bytes()
}

// DecodeRequestIPrune - inverse of EncodeRequestIPrune
func DecodeRequestIPrune(buffer []byte) ([]entry.Hash, error) {
	return readHashes(bytes.NewReader(buffer))
}

// EncodeResponseIPrune - serialize the hash list a recipient confirms
// it is a leader for and already holds, permitting the requester to
// count it toward the min_replicas confirmation threshold
func EncodeResponseIPrune(hashes []entry.Hash) []byte {
	var buf bytes.Buffer
	writeHashes(&buf, hashes)
	return buf.Bytes()
}

// DecodeResponseIPrune - inverse of EncodeResponseIPrune
func DecodeResponseIPrune(buffer []byte) ([]entry.Hash, error) {
	return readHashes(bytes.NewReader(buffer))
}
