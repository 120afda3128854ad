package sharedlog

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/entrylog"
	"github.com/bitmark-inc/peerlog/pid"
	"github.com/bitmark-inc/peerlog/ring"
	"github.com/bitmark-inc/peerlog/stream"
	"github.com/bitmark-inc/peerlog/wire"
)

// Options - parameters for New
type Options struct {
	Name    string
	LocalID string
	Config  *config.Configuration

	Log    *entrylog.Log
	Ring   *ring.Ring
	Stream *stream.Stream

	// Identity is this peer's plaintext creator identity, stamped on
	// locally-created entries; Signer signs them.
	Identity []byte
	Signer   entry.Signer

	// AnnounceAddress is this node's own dialable multiaddr, published
	// on a gid's presence topic so a peer with no existing route can
	// reach it (see presence.go). Empty disables address advertising;
	// remote peers are then only reachable if already known some other
	// way (an existing session, a learned route, or a prior Dial).
	AnnounceAddress string
}

// Node is the replication engine bound to a single Log and Ring: it
// elects leaders, exchanges heads, runs quorum pruning, drives
// adaptive rebalance through a pid.Controller and carries the
// Observer/Replicator/AdaptiveReplicator role state machine.
//
// Grounded on p2p/statemachine/machine.go's Run(args, shutdown) loop
// shape and messagebus for event dissemination (distilled spec's
// pub-sub-not-callbacks design note, §9).
type Node struct {
	log *logger.L

	localID string
	cfg     *config.Configuration

	entries *entrylog.Log
	ring    *ring.Ring
	stream  *stream.Stream

	identity []byte
	signer   entry.Signer

	announceAddress string

	pidCtrl *pid.Controller

	mu              sync.Mutex
	role            RoleState
	matured         bool
	previousLeaders map[string][]string // gid -> last-known leader set, for the distribution pass
	effectiveMinR   map[string]uint32   // gid -> highest min_replicas seen so far

	topicMu   sync.Mutex
	topicSubs map[string]struct{} // gid -> subscribed, see presence.go

	pruneMu     sync.Mutex
	pruneRounds map[string]*pruneRound // gid -> in-flight RequestIPrune round

	metrics *metrics

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New creates a Node. Call Start to join the ring and begin the
// rebalance loop.
func New(opts Options) *Node {
	n := &Node{
		log:             logger.New(opts.Name),
		localID:         opts.LocalID,
		cfg:             opts.Config,
		entries:         opts.Log,
		ring:            opts.Ring,
		stream:          opts.Stream,
		identity:        opts.Identity,
		signer:          opts.Signer,
		announceAddress: opts.AnnounceAddress,
		previousLeaders: make(map[string][]string),
		effectiveMinR:   make(map[string]uint32),
		topicSubs:       make(map[string]struct{}),
		pruneRounds:     make(map[string]*pruneRound),
		metrics:         newMetrics(opts.Name),
		shutdown:        make(chan struct{}),
	}
	n.pidCtrl = pid.New(pid.Config{
		Kp:                opts.Config.PID.Kp,
		Ki:                opts.Config.PID.Ki,
		Kd:                opts.Config.PID.Kd,
		HistoryWindow:     opts.Config.PID.HistoryWindow,
		TargetMemoryLimit: opts.Config.PID.TargetMemoryLimit,
		TargetOccupancy:   opts.Config.PID.TargetOccupancy,
	})
	n.role = initialRole(opts.Config)
	return n
}

// Start joins the ring under the configured initial role and begins
// the debounced rebalance loop. A ring that is still empty at Start
// means this peer is the first one up, so it is immediately mature;
// otherwise it is provisional until WaitForRoleMaturity elapses.
func (n *Node) Start() {
	wasEmpty := 0 == n.ring.Len()

	n.applyOwnRole()

	n.mu.Lock()
	n.matured = wasEmpty
	n.mu.Unlock()

	n.wg.Add(1)
	go n.run()

	if !wasEmpty {
		n.wg.Add(1)
		go n.matureAfter(n.cfg.WaitForRoleMaturity)
	}
}

func (n *Node) matureAfter(d time.Duration) {
	defer n.wg.Done()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		n.mu.Lock()
		n.matured = true
		n.mu.Unlock()
		n.distributionPass()
	case <-n.shutdown:
	}
}

// run is the node's cooperative event loop: a single timer rearmed
// after every rebalance tick, debounced by
// RebalanceDebounceInterval * peer_count.
func (n *Node) run() {
	defer n.wg.Done()
	timer := time.NewTimer(n.rebalanceInterval())
	defer timer.Stop()
	for {
		select {
		case <-n.shutdown:
			return
		case <-timer.C:
			n.rebalance()
			timer.Reset(n.rebalanceInterval())
		}
	}
}

func (n *Node) rebalanceInterval() time.Duration {
	peerCount := n.ring.Len()
	if peerCount < 1 {
		peerCount = 1
	}
	interval := n.cfg.RebalanceDebounceInterval * time.Duration(peerCount)
	if interval <= 0 {
		interval = time.Second
	}
	return interval
}

// Stop runs the terminal transition (broadcast Goodbye at factor 0,
// then leave the ring) and halts the event loop.
func (n *Node) Stop() {
	n.closeRole()
	n.leaveAllGidTopics()
	close(n.shutdown)
	n.wg.Wait()
}

func (n *Node) closeRole() {
	n.mu.Lock()
	n.role = RoleState{Kind: config.RoleObserver, Factor: 0, Timestamp: time.Now()}
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.AutoDialRetry)
	defer cancel()
	_, _ = n.stream.Publish(ctx, stream.PublishOptions{
		Type: wire.TypeGoodbye,
		Body: wire.EncodeRole(wire.Role{
			Role:      string(config.RoleObserver),
			Factor:    0,
			Timestamp: time.Now().UnixNano(),
		}),
		Mode:       wire.Seek,
		Redundancy: 1,
	})

	n.ring.Remove(n.localID)
}

// HandleMessage is the stream.DeliverFunc this Node services; wire it
// via stream.Stream.SetDeliver before calling Start.
func (n *Node) HandleMessage(from, origin string, msg wire.Message) {
	switch msg.Type {
	case wire.TypeExchangeHeads:
		n.onExchangeHeads(origin, msg.Body)
	case wire.TypeRequestIPrune:
		n.onRequestIPrune(origin, msg.Body)
	case wire.TypeResponseIPrune:
		n.onResponseIPrune(origin, msg.Body)
	case wire.TypeRole:
		n.onRoleAnnouncement(origin, msg.Body, false)
	case wire.TypeGoodbye:
		n.onRoleAnnouncement(origin, msg.Body, true)
	default:
		if nil != n.log {
			n.log.Debugf("ignoring message type %d from %s", msg.Type, from)
		}
	}
}
