// Package stream implements the direct-stream transport: signed,
// source-routed point-to-point delivery over a transport.Transport,
// with three delivery modes (Silent, Acknowledged, Seek), message-id
// dedup, and ACK-driven route learning into a route.Table.
//
// Grounded on p2p/peerStore.go's per-peer registration-with-expiry
// idiom (sessions are torn down on PeerDown rather than polled against
// a fixed TTL) and limitedset for bounded dedup.
package stream
