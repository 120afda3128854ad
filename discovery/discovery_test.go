package discovery

import (
	"context"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/transport"
)

type fakeTransport struct {
	dialed []string
	fail   map[string]bool
}

func (f *fakeTransport) LocalID() string { return "local" }
func (f *fakeTransport) Dial(ctx context.Context, addr string) error {
	if f.fail[addr] {
		return errDial
	}
	f.dialed = append(f.dialed, addr)
	return nil
}
func (f *fakeTransport) Open(ctx context.Context, peer string) (transport.Stream, error) {
	return nil, nil
}
func (f *fakeTransport) Accept() <-chan transport.Stream                { return nil }
func (f *fakeTransport) Subscribe(topic string) (<-chan []byte, error) { return nil, nil }
func (f *fakeTransport) Unsubscribe(topic string)                      {}
func (f *fakeTransport) Publish(topic string, data []byte) error       { return nil }
func (f *fakeTransport) PeerUp() <-chan string                         { return nil }
func (f *fakeTransport) PeerDown() <-chan string                       { return nil }
func (f *fakeTransport) Close() error                                  { return nil }

type dialError string

func (e dialError) Error() string { return string(e) }

const errDial = dialError("dial failed")

func TestResolveAndDialDialsEachNewAddressOnce(t *testing.T) {
	ft := &fakeTransport{fail: make(map[string]bool)}
	b := &Bootstrap{
		log:       logger.New("discovery-test"),
		domain:    "bootstrap.example.com",
		transport: ft,
		lookup: func(name string) ([]string, error) {
			return []string{"/ip4/1.2.3.4/tcp/4001/p2p/QmA", "/ip4/1.2.3.5/tcp/4001/p2p/QmB"}, nil
		},
		dialed: make(map[string]bool),
	}

	b.resolveAndDial()
	if 2 != len(ft.dialed) {
		t.Fatalf("expected 2 dials, got %d", len(ft.dialed))
	}

	b.resolveAndDial()
	if 2 != len(ft.dialed) {
		t.Fatalf("expected no re-dial of already-dialed addresses, got %d total dials", len(ft.dialed))
	}
}

func TestResolveAndDialSkipsFailedAddressesOnRetry(t *testing.T) {
	ft := &fakeTransport{fail: map[string]bool{"/ip4/1.2.3.4/tcp/4001/p2p/QmA": true}}
	b := &Bootstrap{
		log:       logger.New("discovery-test"),
		domain:    "bootstrap.example.com",
		transport: ft,
		lookup: func(name string) ([]string, error) {
			return []string{"/ip4/1.2.3.4/tcp/4001/p2p/QmA", "/ip4/1.2.3.5/tcp/4001/p2p/QmB"}, nil
		},
		dialed: make(map[string]bool),
	}

	b.resolveAndDial()
	if 1 != len(ft.dialed) {
		t.Fatalf("expected only the successful dial to be recorded, got %d", len(ft.dialed))
	}

	// a failed dial is not remembered as dialed, so a later retry tries it again
	ft.fail["/ip4/1.2.3.4/tcp/4001/p2p/QmA"] = false
	b.resolveAndDial()
	if 2 != len(ft.dialed) {
		t.Fatalf("expected the previously-failed address to be retried, got %d dials", len(ft.dialed))
	}
}
