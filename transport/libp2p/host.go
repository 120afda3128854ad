package libp2p

import (
	"context"
	"sync"

	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	corepeer "github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/protocol"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	tls "github.com/libp2p/go-libp2p-tls"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/transport"
	"github.com/bitmark-inc/peerlog/util"
)

// streamProtocol - the libp2p protocol ID direct-stream traffic is
// carried under, distinct from the teacher's register/gossip protocol
const streamProtocol = protocol.ID("/peerlog/stream/1.0.0")

// Config - parameters for New
type Config struct {
	Listen     []string
	Announce   []string
	PrivateKey string // hex-encoded, as produced by util.EncodePrivKeyToHex
}

// Host - a transport.Transport backed by a libp2p host, grounded on
// p2p/node.go's Setup/NewHost
type Host struct {
	log *logger.L

	host host.Host
	ps   *pubsub.PubSub

	mu            sync.Mutex
	subscriptions map[string]*pubsub.Subscription
	subCancel     map[string]context.CancelFunc

	inbound  chan transport.Stream
	peerUp   chan string
	peerDown chan string
}

// New - stand up a libp2p host listening on cfg.Listen, following
// p2p/node.go's Setup: decode the hex private key, expand listen
// addresses, secure transport via TLS, and register a stream handler
// before returning
func New(name string, cfg Config) (*Host, error) {
	listenIPPorts := util.DualStackAddrToIPV4IPV6(cfg.Listen)
	if 0 == len(listenIPPorts) {
		return nil, fault.ErrNoListenAddrs
	}
	listenAddrs := util.IPPortToMultiAddr(listenIPPorts)

	privKey, err := util.DecodePrivKeyFromHex(cfg.PrivateKey)
	if nil != err {
		return nil, err
	}

	h, err := libp2p.New(
		context.Background(),
		libp2p.Identity(privKey),
		libp2p.ListenAddrs(listenAddrs...),
		libp2p.Security(tls.ID, tls.New),
	)
	if nil != err {
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(context.Background(), h)
	if nil != err {
		h.Close()
		return nil, err
	}

	lh := &Host{
		log:           logger.New(name),
		host:          h,
		ps:            ps,
		subscriptions: make(map[string]*pubsub.Subscription),
		subCancel:     make(map[string]context.CancelFunc),
		inbound:       make(chan transport.Stream, 64),
		peerUp:        make(chan string, 64),
		peerDown:      make(chan string, 64),
	}

	h.SetStreamHandler(streamProtocol, lh.handleStream)
	h.Network().Notify(lh.notifiee())

	for _, a := range h.Addrs() {
		lh.log.Infof("listening on %s/%s/%s", a, streamProtocol, h.ID())
	}

	return lh, nil
}

// LocalID - this host's own peer ID
func (lh *Host) LocalID() string {
	return lh.host.ID().String()
}

func (lh *Host) handleStream(s network.Stream) {
	wrapped := &streamConn{stream: s}
	select {
	case lh.inbound <- wrapped:
	default:
		lh.log.Warnf("dropping inbound stream from %s: accept backlog full", s.Conn().RemotePeer())
		s.Close()
	}
}

// Accept - streams opened against this host by remote peers
func (lh *Host) Accept() <-chan transport.Stream {
	return lh.inbound
}

// Dial - connect to a peer at a multiaddr (with a trailing /p2p/<id>)
// without opening a stream, following p2p/connector.go's DirectConnect
func (lh *Host) Dial(ctx context.Context, addr string) error {
	maAddr, err := ma.NewMultiaddr(addr)
	if nil != err {
		return err
	}
	info, err := util.MaAddrToAddrInfo(maAddr)
	if nil != err {
		return err
	}
	return lh.host.Connect(ctx, *info)
}

// Open - open a direct stream to peer, auto-dialing via whatever
// addresses libp2p's peerstore already has on file for it
func (lh *Host) Open(ctx context.Context, peer string) (transport.Stream, error) {
	id, err := corepeer.IDB58Decode(peer)
	if nil != err {
		return nil, err
	}
	s, err := lh.host.NewStream(ctx, id, streamProtocol)
	if nil != err {
		return nil, fault.ErrNoRoute
	}
	return &streamConn{stream: s}, nil
}

// PeerUp - peer IDs as they connect
func (lh *Host) PeerUp() <-chan string {
	return lh.peerUp
}

// PeerDown - peer IDs as they disconnect
func (lh *Host) PeerDown() <-chan string {
	return lh.peerDown
}

// Close - shut down the host
func (lh *Host) Close() error {
	lh.mu.Lock()
	for _, cancel := range lh.subCancel {
		cancel()
	}
	lh.mu.Unlock()
	return lh.host.Close()
}
