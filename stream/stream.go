package stream

import (
	"bufio"
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/counter"
	"github.com/bitmark-inc/peerlog/keystore"
	"github.com/bitmark-inc/peerlog/limitedset"
	"github.com/bitmark-inc/peerlog/route"
	"github.com/bitmark-inc/peerlog/transport"
	"github.com/bitmark-inc/peerlog/wire"
)

// DeliverFunc is invoked once per unique inbound message this node is
// a target of (or, for an untargeted message, every message), after
// dedup and signature verification. from is the immediate neighbor
// the frame arrived over; origin is the peer that originally signed
// and sent it, which may be several relay hops further out - a
// handler that needs to reply to the actual sender (rather than just
// the hop it heard it from) addresses origin, not from.
type DeliverFunc func(from, origin string, msg wire.Message)

const dedupCapacity = 4096

// Options - parameters for New
type Options struct {
	Name      string
	Transport transport.Transport
	Route     *route.Table
	Keystore  keystore.Keystore
	Deliver   DeliverFunc

	// SigningKey identifies this node in outgoing frame signatures;
	// zero value disables signing of outgoing frames. Signature
	// checking on receive depends on Keystore alone: a nil Keystore
	// trusts every frame (useful for transport-level tests).
	SigningKey keystore.Key

	// AutoDialRetry bounds how long Open-by-address is given before
	// falling back to reporting failure; default 5s.
	AutoDialRetry time.Duration

	// DefaultTTL is the Header.Expires horizon and the Acknowledged /
	// Seek ack-wait deadline used when a Publish call leaves TTL zero.
	DefaultTTL time.Duration
}

// Stream is the direct-stream protocol: signed frame I/O, dedup,
// source-routing and relay, the three delivery modes, and ACK-driven
// route learning.
type Stream struct {
	log *logger.L

	transport transport.Transport
	route     *route.Table
	keystore  keystore.Keystore
	deliver   DeliverFunc

	signingKey    keystore.Key
	autoDialRetry time.Duration
	defaultTTL    time.Duration

	seen    *limitedset.LimitedSet
	limiter *neighborLimiter

	countsMu sync.Mutex
	counts   map[string]*counter.Counter

	mu        sync.Mutex
	sessions  map[string]*session
	addresses map[string]string // peer id -> dial address, learned via RegisterAddress

	relayMu     sync.Mutex
	relayedFrom map[[32]byte]relayInfo

	acks *ackRegistry

	shutdown chan struct{}
	wg       sync.WaitGroup
}

type relayInfo struct {
	reverseHop string
	sentAt     time.Time
}

type session struct {
	neighbor string
	raw      transport.Stream
	reader   *bufio.Reader
	writeMu  sync.Mutex
}

func (s *session) write(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return writeRecord(s.raw, payload)
}

// New creates a Stream bound to a transport, routing table and
// keystore. Call Start to begin servicing it.
func New(opts Options) *Stream {
	autoDialRetry := opts.AutoDialRetry
	if 0 == autoDialRetry {
		autoDialRetry = 5 * time.Second
	}
	defaultTTL := opts.DefaultTTL
	if 0 == defaultTTL {
		defaultTTL = 10 * time.Second
	}
	return &Stream{
		log:           logger.New(opts.Name),
		transport:     opts.Transport,
		route:         opts.Route,
		keystore:      opts.Keystore,
		deliver:       opts.Deliver,
		signingKey:    opts.SigningKey,
		autoDialRetry: autoDialRetry,
		defaultTTL:    defaultTTL,
		seen:          limitedset.New(dedupCapacity),
		limiter:       newNeighborLimiter(),
		counts:        make(map[string]*counter.Counter),
		sessions:      make(map[string]*session),
		addresses:     make(map[string]string),
		relayedFrom:   make(map[[32]byte]relayInfo),
		acks:          newAckRegistry(),
		shutdown:      make(chan struct{}),
	}
}

// Start launches the accept and peer-event loops.
func (st *Stream) Start() {
	st.wg.Add(2)
	go st.acceptLoop()
	go st.peerEventLoop()
}

// Stop halts all loops and closes every open session.
func (st *Stream) Stop() {
	close(st.shutdown)

	// readLoop has no shutdown case of its own - it only returns once
	// its connection errors - so sessions must be closed here rather
	// than after wg.Wait(), or this would deadlock against them.
	st.mu.Lock()
	sessions := make([]*session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		sessions = append(sessions, sess)
	}
	st.mu.Unlock()
	for _, sess := range sessions {
		sess.raw.Close()
	}

	st.wg.Wait()
	st.acks.stop()
}

func (st *Stream) acceptLoop() {
	defer st.wg.Done()
	for {
		select {
		case <-st.shutdown:
			return
		case raw, ok := <-st.transport.Accept():
			if !ok {
				return
			}
			st.adopt(raw)
		}
	}
}

func (st *Stream) peerEventLoop() {
	defer st.wg.Done()
	for {
		select {
		case <-st.shutdown:
			return
		case peer, ok := <-st.transport.PeerDown():
			if !ok {
				return
			}
			st.onPeerDown(peer)
		}
	}
}

func (st *Stream) adopt(raw transport.Stream) *session {
	sess := &session{neighbor: raw.Peer(), raw: raw, reader: bufio.NewReader(raw)}
	st.mu.Lock()
	st.sessions[sess.neighbor] = sess
	st.mu.Unlock()

	st.wg.Add(1)
	go st.readLoop(sess)
	return sess
}

func (st *Stream) readLoop(sess *session) {
	defer st.wg.Done()
	defer func() {
		st.mu.Lock()
		if st.sessions[sess.neighbor] == sess {
			delete(st.sessions, sess.neighbor)
		}
		st.mu.Unlock()
	}()

	for {
		payload, err := readRecord(sess.reader)
		if nil != err {
			if nil != st.log {
				st.log.Debugf("session %s closed: %v", sess.neighbor, err)
			}
			return
		}
		st.handlePayload(sess.neighbor, payload)
	}
}

// onPeerDown forgets a disconnected neighbor's routes immediately,
// ahead of the routing table's own TTL eviction.
func (st *Stream) onPeerDown(peer string) {
	st.mu.Lock()
	delete(st.sessions, peer)
	delete(st.addresses, peer)
	st.mu.Unlock()
	st.limiter.forget(peer)
	if nil != st.route {
		st.route.Goodbye(peer)
	}
}

// SetDeliver assigns (or replaces) the Deliver callback. Exists
// because Stream and its eventual caller (sharedlog.Node) have a
// wiring cycle: the Node needs a constructed Stream to publish
// through, but the Stream needs the Node's handler to deliver to -
// callers build the Stream with a nil Deliver, construct the Node
// around it, then call SetDeliver before Start. Not safe to call once
// Start has begun servicing sessions.
func (st *Stream) SetDeliver(fn DeliverFunc) {
	st.deliver = fn
}

// RegisterAddress remembers addr as how to auto-dial peer, should a
// publish later find no open session and no learned route to it.
func (st *Stream) RegisterAddress(peer, addr string) {
	st.mu.Lock()
	st.addresses[peer] = addr
	st.mu.Unlock()
}

// openSession returns an existing session to neighbor, or dials one
// (via a RegisterAddress-learned address, then Open) if none is open.
func (st *Stream) openSession(ctx context.Context, neighbor string) (*session, error) {
	st.mu.Lock()
	sess, exists := st.sessions[neighbor]
	addr, hasAddr := st.addresses[neighbor]
	st.mu.Unlock()
	if exists {
		return sess, nil
	}

	if hasAddr {
		dialCtx, cancel := context.WithTimeout(ctx, st.autoDialRetry)
		err := st.transport.Dial(dialCtx, addr)
		cancel()
		if nil != err {
			return nil, err
		}
	}

	raw, err := st.transport.Open(ctx, neighbor)
	if nil != err {
		return nil, err
	}
	return st.adopt(raw), nil
}
