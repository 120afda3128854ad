package libp2p

import (
	"context"

	pubsub "github.com/libp2p/go-libp2p-pubsub"

	"github.com/bitmark-inc/peerlog/fault"
)

// Subscribe - join topic and relay messages onto a channel, following
// p2p/multicastSub.go's sub.Next(ctx) loop
func (lh *Host) Subscribe(topic string) (<-chan []byte, error) {
	lh.mu.Lock()
	if _, exists := lh.subscriptions[topic]; exists {
		lh.mu.Unlock()
		return nil, fault.ErrAlreadyInitialised
	}

	sub, err := lh.ps.Subscribe(topic)
	if nil != err {
		lh.mu.Unlock()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lh.subscriptions[topic] = sub
	lh.subCancel[topic] = cancel
	lh.mu.Unlock()

	out := make(chan []byte, 64)
	go lh.subscriptionLoop(ctx, sub, out)
	return out, nil
}

func (lh *Host) subscriptionLoop(ctx context.Context, sub *pubsub.Subscription, out chan []byte) {
	defer close(out)
	for {
		msg, err := sub.Next(ctx)
		if nil != err {
			return // ctx cancelled by Unsubscribe, or the subscription died
		}
		if msg.GetFrom() == lh.host.ID() {
			continue
		}
		select {
		case out <- msg.Data:
		default:
			lh.log.Warnf("dropping gossip message on %s: subscriber backlog full", sub.Topic())
		}
	}
}

// Unsubscribe - leave topic
func (lh *Host) Unsubscribe(topic string) {
	lh.mu.Lock()
	defer lh.mu.Unlock()

	sub, exists := lh.subscriptions[topic]
	if !exists {
		return
	}
	lh.subCancel[topic]()
	sub.Cancel()
	delete(lh.subscriptions, topic)
	delete(lh.subCancel, topic)
}

// Publish - broadcast data on topic
func (lh *Host) Publish(topic string, data []byte) error {
	return lh.ps.Publish(topic, data)
}
