// Package libp2p implements transport.Transport on top of go-libp2p,
// grounded on p2p/node.go's host setup, p2p/connector.go's dial
// handling, p2p/basicStream.go's stream framing, and
// p2p/multicastSub.go's gossipsub subscription loop.
package libp2p
