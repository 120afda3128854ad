package blockstore

import (
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/peerlog/entry"
)

type ed25519Signer struct{ priv ed25519.PrivateKey }

func (s ed25519Signer) Sign(message []byte) (entry.Signature, error) {
	return entry.Signature(ed25519.Sign(s.priv, message)), nil
}

func TestEntryStoreRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("GenerateKey: %s", err)
	}

	e, err := entry.Create(entry.CreateOptions{
		Payload:  []byte("hello"),
		Identity: []byte(pub),
		Signer:   ed25519Signer{priv: priv},
	})
	if nil != err {
		t.Fatalf("Create: %s", err)
	}

	backing := newMemStoreStub()
	es := NewEntryStore(backing)
	es.Put(e)

	got, ok := es.Get(e.Hash)
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if got.Hash != e.Hash {
		t.Fatalf("hash mismatch: got %s want %s", got.Hash, e.Hash)
	}
	if string(got.Payload) != string(e.Payload) {
		t.Fatalf("payload mismatch: got %q want %q", got.Payload, e.Payload)
	}
}

func TestEntryStoreGetMissReturnsFalse(t *testing.T) {
	es := NewEntryStore(newMemStoreStub())
	_, ok := es.Get(entry.NewHash([]byte("missing")))
	if ok {
		t.Fatal("expected a miss for an absent hash")
	}
}

func TestEntryStoreTreatsUndecodableDataAsMiss(t *testing.T) {
	backing := newMemStoreStub()
	hash := entry.NewHash([]byte("garbage"))
	backing.Put(hash, []byte("not a valid wire-encoded entry"))

	es := NewEntryStore(backing)
	_, ok := es.Get(hash)
	if ok {
		t.Fatal("expected a corrupt record to be treated as a miss")
	}
}

// memStoreStub - a minimal Store, kept local to avoid this package
// depending on its own memstore subpackage in tests.
type memStoreStub struct {
	data map[entry.Hash][]byte
}

func newMemStoreStub() *memStoreStub {
	return &memStoreStub{data: make(map[entry.Hash][]byte)}
}

func (m *memStoreStub) Put(hash entry.Hash, data []byte) { m.data[hash] = data }
func (m *memStoreStub) Get(hash entry.Hash) ([]byte, bool) {
	data, ok := m.data[hash]
	return data, ok
}
func (m *memStoreStub) Has(hash entry.Hash) bool { _, ok := m.data[hash]; return ok }
func (m *memStoreStub) Remove(hash entry.Hash)   { delete(m.data, hash) }
func (m *memStoreStub) Len() int                 { return len(m.data) }
