package libp2p

import (
	"github.com/libp2p/go-libp2p-core/network"
)

// streamConn - wraps a libp2p network.Stream as a transport.Stream,
// grounded on p2p/basicStream.go's stream-as-plain-io idiom (here
// without its fixed read-loop, since stream's framing owns reads)
type streamConn struct {
	stream network.Stream
}

func (s *streamConn) Read(p []byte) (int, error)  { return s.stream.Read(p) }
func (s *streamConn) Write(p []byte) (int, error) { return s.stream.Write(p) }
func (s *streamConn) Close() error                { return s.stream.Close() }

func (s *streamConn) Peer() string {
	return s.stream.Conn().RemotePeer().String()
}
