// Package transport declares the direct-stream transport contract the
// rest of this module depends on for dialing peers, exchanging framed
// wire.Message traffic, and gossip-broadcasting the per-gid presence
// announcements that don't need a point-to-point connection. Concrete adapters
// live in subpackages (transport/libp2p).
package transport
