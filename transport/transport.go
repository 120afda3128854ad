package transport

import (
	"context"
	"io"
)

// Stream - a single framed byte-stream connection to a peer, used by
// the direct-stream package to carry wire.Message traffic
type Stream interface {
	io.ReadWriteCloser

	// Peer - the remote peer's identity, in whatever form the
	// underlying transport names peers (e.g. a libp2p peer ID string)
	Peer() string
}

// Transport - the collaborator contract package stream depends on for
// point-to-point delivery, and sharedlog depends on (through stream's
// topic helpers) for gossiping gid presence announcements to the whole
// mesh rather than one peer.
type Transport interface {
	// LocalID - this node's own peer identity
	LocalID() string

	// Dial - connect to a peer at addr (transport-specific address
	// syntax, e.g. a multiaddr) without opening a stream yet
	Dial(ctx context.Context, addr string) error

	// Open - open a stream to peer, auto-dialing via any address
	// learned from a prior Dial/PeerUp event
	Open(ctx context.Context, peer string) (Stream, error)

	// Accept - streams opened by remote peers against this node
	Accept() <-chan Stream

	// Subscribe - join a gossip topic; messages arrive on the
	// returned channel until Unsubscribe is called
	Subscribe(topic string) (<-chan []byte, error)

	// Unsubscribe - leave a gossip topic
	Unsubscribe(topic string)

	// Publish - broadcast data on a gossip topic
	Publish(topic string, data []byte) error

	// PeerUp - peer IDs as they connect
	PeerUp() <-chan string

	// PeerDown - peer IDs as they disconnect
	PeerDown() <-chan string

	// Close - shut down the transport and release its resources
	Close() error
}
