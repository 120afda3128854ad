package libp2p

import (
	"context"
	"fmt"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/peerlog/util"
)

func mustConfig(t *testing.T, port int) Config {
	t.Helper()
	hexKey, err := util.MakeEd25519PeerKey()
	if nil != err {
		t.Fatalf("MakeEd25519PeerKey: %s", err)
	}
	return Config{
		Listen:     []string{fmt.Sprintf("127.0.0.1:%d", port)},
		PrivateKey: hexKey,
	}
}

func listenMultiaddr(t *testing.T, h *Host) ma.Multiaddr {
	t.Helper()
	addrs := h.host.Addrs()
	if 0 == len(addrs) {
		t.Fatal("host has no listen addresses")
	}
	full, err := ma.NewMultiaddr(fmt.Sprintf("%s/p2p/%s", addrs[0], h.LocalID()))
	if nil != err {
		t.Fatalf("NewMultiaddr: %s", err)
	}
	return full
}

func TestOpenStreamRoundTrip(t *testing.T) {
	a, err := New("host-a", mustConfig(t, 24101))
	if nil != err {
		t.Fatalf("New a: %s", err)
	}
	defer a.Close()

	b, err := New("host-b", mustConfig(t, 24102))
	if nil != err {
		t.Fatalf("New b: %s", err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Dial(ctx, listenMultiaddr(t, b).String()); nil != err {
		t.Fatalf("Dial: %s", err)
	}

	s, err := a.Open(ctx, b.LocalID())
	if nil != err {
		t.Fatalf("Open: %s", err)
	}
	defer s.Close()

	select {
	case incoming := <-b.Accept():
		defer incoming.Close()

		if _, err := s.Write([]byte("ping")); nil != err {
			t.Fatalf("Write: %s", err)
		}

		buffer := make([]byte, 4)
		if _, err := incoming.Read(buffer); nil != err {
			t.Fatalf("Read: %s", err)
		}
		if "ping" != string(buffer) {
			t.Fatalf("wrong payload: %q", buffer)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for accepted stream")
	}
}

func TestSubscribePublishRoundTrip(t *testing.T) {
	a, err := New("host-a", mustConfig(t, 24103))
	if nil != err {
		t.Fatalf("New a: %s", err)
	}
	defer a.Close()

	b, err := New("host-b", mustConfig(t, 24104))
	if nil != err {
		t.Fatalf("New b: %s", err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Dial(ctx, listenMultiaddr(t, b).String()); nil != err {
		t.Fatalf("Dial: %s", err)
	}

	const topic = "peerlog-test-topic"
	aMsgs, err := a.Subscribe(topic)
	if nil != err {
		t.Fatalf("a.Subscribe: %s", err)
	}
	bMsgs, err := b.Subscribe(topic)
	if nil != err {
		t.Fatalf("b.Subscribe: %s", err)
	}

	// let the subscriptions mesh before publishing
	time.Sleep(500 * time.Millisecond)

	if err := a.Publish(topic, []byte("hello")); nil != err {
		t.Fatalf("Publish: %s", err)
	}

	select {
	case msg := <-bMsgs:
		if "hello" != string(msg) {
			t.Fatalf("wrong message: %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for gossip message")
	}

	a.Unsubscribe(topic)
	_ = aMsgs
}
