package entrylog_test

import (
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/entrylog"
)

type ed25519Signer struct {
	private ed25519.PrivateKey
}

func (s *ed25519Signer) Sign(message []byte) (entry.Signature, error) {
	return entry.Signature(ed25519.Sign(s.private, message)), nil
}

type ed25519Verifier struct{}

func (ed25519Verifier) Verify(sig entry.Signature, publicKey []byte, message []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, []byte(sig))
}

func newSigner(t *testing.T) (*ed25519Signer, ed25519.PublicKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		t.Fatalf("GenerateKey: %v", err)
	}
	return &ed25519Signer{private: priv}, pub
}

type memStore struct {
	entries map[entry.Hash]*entry.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[entry.Hash]*entry.Entry)}
}

func (m *memStore) Get(hash entry.Hash) (*entry.Entry, bool) {
	e, ok := m.entries[hash]
	return e, ok
}

func (m *memStore) Put(e *entry.Entry) {
	m.entries[e.Hash] = e
}

func newLog(t *testing.T) (*entrylog.Log, *ed25519Signer, ed25519.PublicKey) {
	signer, pub := newSigner(t)
	l := entrylog.New(entrylog.Options{
		Name:     "test",
		Store:    newMemStore(),
		Verifier: ed25519Verifier{},
	})
	return l, signer, pub
}

func TestAppendExtendsHeadsAndClock(t *testing.T) {

	l, signer, pub := newLog(t)
	defer l.Stop()

	e1, err := l.Append(entrylog.AppendOptions{Payload: []byte("a"), Identity: []byte(pub), Signer: signer})
	if nil != err {
		t.Fatalf("Append 1: %v", err)
	}
	e2, err := l.Append(entrylog.AppendOptions{Payload: []byte("b"), Identity: []byte(pub), Signer: signer})
	if nil != err {
		t.Fatalf("Append 2: %v", err)
	}

	if e2.Clock.Time <= e1.Clock.Time {
		t.Fatalf("clock did not advance: %d <= %d", e2.Clock.Time, e1.Clock.Time)
	}

	heads := l.Heads()
	if 1 != len(heads) || heads[0].Hash != e2.Hash {
		t.Fatalf("expected single head %s, got %v", e2.Hash, heads)
	}

	if 1 != len(e2.Next) || e2.Next[0] != e1.Hash {
		t.Fatalf("expected e2 to reference e1 as parent, got %v", e2.Next)
	}

	if 2 != l.Len() {
		t.Fatalf("Len() = %d  expected: 2", l.Len())
	}
}

func TestJoinRejectsBadSignature(t *testing.T) {

	l, signer, pub := newLog(t)
	defer l.Stop()

	e, err := entry.Create(entry.CreateOptions{
		Payload:   []byte("x"),
		ClockTime: 1,
		Identity:  []byte(pub),
		GID:       "g",
		Signer:    signer,
	})
	if nil != err {
		t.Fatalf("Create: %v", err)
	}
	e.Payload = []byte("tampered")

	added := l.Join([]*entry.Entry{e}, nil, 0)
	if 0 != added {
		t.Fatalf("expected tampered entry to be rejected, added = %d", added)
	}
	if 0 != l.Len() {
		t.Fatalf("log should remain empty, Len() = %d", l.Len())
	}
}

func TestJoinDefersUntilParentArrives(t *testing.T) {

	l, signer, pub := newLog(t)
	defer l.Stop()

	root, err := entry.Create(entry.CreateOptions{
		Payload:   []byte("root"),
		ClockTime: 1,
		Identity:  []byte(pub),
		GID:       "g",
		Signer:    signer,
	})
	if nil != err {
		t.Fatalf("Create root: %v", err)
	}
	child, err := entry.Create(entry.CreateOptions{
		Payload:   []byte("child"),
		Next:      []entry.Hash{root.Hash},
		ClockTime: 2,
		Identity:  []byte(pub),
		GID:       "g",
		Signer:    signer,
	})
	if nil != err {
		t.Fatalf("Create child: %v", err)
	}

	added := l.Join([]*entry.Entry{child}, nil, 0)
	if 0 != added {
		t.Fatalf("child should be deferred before its parent arrives, added = %d", added)
	}
	if 0 != l.Len() {
		t.Fatalf("log should still be empty, Len() = %d", l.Len())
	}

	added = l.Join([]*entry.Entry{root}, nil, 0)
	if 1 != added {
		t.Fatalf("root should integrate, added = %d", added)
	}

	if 2 != l.Len() {
		t.Fatalf("child should have been promoted once its parent arrived, Len() = %d", l.Len())
	}

	heads := l.Heads()
	if 1 != len(heads) || heads[0].Hash != child.Hash {
		t.Fatalf("expected single head %s, got %v", child.Hash, heads)
	}
}

func TestTraverseIsDeterministic(t *testing.T) {

	l, signer, pub := newLog(t)
	defer l.Stop()

	var last *entry.Entry
	for i := 0; i < 5; i += 1 {
		e, err := l.Append(entrylog.AppendOptions{Payload: []byte{byte(i)}, Identity: []byte(pub), Signer: signer})
		if nil != err {
			t.Fatalf("Append %d: %v", i, err)
		}
		last = e
	}

	first := l.Traverse(nil, 0, nil)
	second := l.Traverse([]entry.Hash{last.Hash}, 0, nil)

	if len(first) != len(second) {
		t.Fatalf("traversal lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Hash != second[i].Hash {
			t.Fatalf("traversal order differs at %d: %s vs %s", i, first[i].Hash, second[i].Hash)
		}
	}
}

func TestCutKeepsNewestEntries(t *testing.T) {

	l, signer, pub := newLog(t)
	defer l.Stop()

	for i := 0; i < 5; i += 1 {
		if _, err := l.Append(entrylog.AppendOptions{Payload: []byte{byte(i)}, Identity: []byte(pub), Signer: signer}); nil != err {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	l.Cut(2)

	if 2 != l.Len() {
		t.Fatalf("Len() = %d  expected: 2", l.Len())
	}
	if 1 != len(l.Heads()) {
		t.Fatalf("expected exactly one head after cut, got %d", len(l.Heads()))
	}
}
