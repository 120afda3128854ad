package libp2p

import (
	"github.com/libp2p/go-libp2p-core/network"
)

// notifiee - feeds connect/disconnect events into PeerUp/PeerDown,
// grounded on p2p/peerStore.go's peer-bookkeeping but reported as
// events rather than mutated into the peerstore directly
func (lh *Host) notifiee() network.Notifiee {
	return &network.NotifyBundle{
		ConnectedF: func(_ network.Network, c network.Conn) {
			id := c.RemotePeer().String()
			select {
			case lh.peerUp <- id:
			default:
				lh.log.Warnf("dropping peer-up event for %s: backlog full", id)
			}
		},
		DisconnectedF: func(_ network.Network, c network.Conn) {
			id := c.RemotePeer().String()
			select {
			case lh.peerDown <- id:
			default:
				lh.log.Warnf("dropping peer-down event for %s: backlog full", id)
			}
		},
	}
}
