package sharedlog

import (
	"fmt"

	"github.com/bitmark-inc/peerlog/util"
	"github.com/bitmark-inc/peerlog/wire"
)

// gidTopic names the gossip topic peers holding (or about to hold)
// entries for gid subscribe to, following transport.Transport's
// topic-based Subscribe/Publish contract: a node that becomes a
// leader for a gid it has never touched before has no direct-stream
// route to the rest of that gid's replica set yet, and the ring alone
// only teaches it about peers it has already exchanged Role
// broadcasts with.
func gidTopic(gid string) string {
	return "peerlog/gid/" + gid
}

// ensureGidSubscription joins gid's presence topic the first time
// this node sees an entry for it, publishing this node's own address
// once and relaying every other participant's announcement into the
// stream's learned-address table so a later publish can reach them
// even with no existing session or routing-table entry.
func (n *Node) ensureGidSubscription(gid string) {
	n.topicMu.Lock()
	if _, already := n.topicSubs[gid]; already {
		n.topicMu.Unlock()
		return
	}

	ch, err := n.stream.SubscribeTopic(gidTopic(gid))
	if nil != err {
		n.topicMu.Unlock()
		if nil != n.log {
			util.LogDebug(n.log, util.CoCyan, fmt.Sprintf("subscribe to gid topic %s: %v", gid, err))
		}
		return
	}
	n.topicSubs[gid] = struct{}{}
	n.topicMu.Unlock()

	n.wg.Add(1)
	go n.presenceLoop(ch)
	n.publishPresence(gid)
}

// presenceLoop integrates every presence announcement heard on a gid
// topic until the subscription's channel is closed at Stop.
func (n *Node) presenceLoop(ch <-chan []byte) {
	defer n.wg.Done()
	for data := range ch {
		presence, err := wire.DecodePresence(data)
		if nil != err {
			continue
		}
		if presence.PeerID == n.localID || "" == presence.Address {
			continue
		}
		n.stream.RegisterAddress(presence.PeerID, presence.Address)
	}
}

func (n *Node) publishPresence(gid string) {
	err := n.stream.PublishTopic(gidTopic(gid), wire.EncodePresence(wire.Presence{
		PeerID:  n.localID,
		Address: n.announceAddress,
	}))
	if nil != err && nil != n.log {
		util.LogDebug(n.log, util.CoCyan, fmt.Sprintf("publish presence for gid %s: %v", gid, err))
	}
}

// leaveAllGidTopics unsubscribes from every gid topic this node
// joined, called once from Stop.
func (n *Node) leaveAllGidTopics() {
	n.topicMu.Lock()
	defer n.topicMu.Unlock()
	for gid := range n.topicSubs {
		n.stream.UnsubscribeTopic(gidTopic(gid))
		delete(n.topicSubs, gid)
	}
}
