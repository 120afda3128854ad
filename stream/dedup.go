package stream

import "crypto/sha256"

const msgIDDiscriminator = "peerlog-direct-stream"

// msgID derives the dedup key for a frame id: SHA-256 of a fixed
// discriminator concatenated with the frame's 32-byte id, so the
// dedup set never collides with keys any other package hashes over
// raw ids.
func msgID(id [32]byte) string {
	h := sha256.New()
	h.Write([]byte(msgIDDiscriminator))
	h.Write(id[:])
	return string(h.Sum(nil))
}
