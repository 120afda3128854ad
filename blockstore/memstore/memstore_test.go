package memstore

import (
	"testing"

	"github.com/bitmark-inc/peerlog/entry"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	hash := entry.NewHash([]byte("payload"))

	s.Put(hash, []byte("payload"))

	data, ok := s.Get(hash)
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if "payload" != string(data) {
		t.Fatalf("wrong data: %q", data)
	}
	if !s.Has(hash) {
		t.Fatal("Has should report true for a stored hash")
	}
	if 1 != s.Len() {
		t.Fatalf("wrong length: %d", s.Len())
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	s := New()
	_, ok := s.Get(entry.NewHash([]byte("missing")))
	if ok {
		t.Fatal("expected a miss for an absent hash")
	}
}

func TestRemoveDropsEntry(t *testing.T) {
	s := New()
	hash := entry.NewHash([]byte("payload"))
	s.Put(hash, []byte("payload"))
	s.Remove(hash)

	if s.Has(hash) {
		t.Fatal("expected hash to be gone after Remove")
	}
	if 0 != s.Len() {
		t.Fatalf("wrong length after remove: %d", s.Len())
	}
}

func TestPutCopiesInputBuffer(t *testing.T) {
	s := New()
	hash := entry.NewHash([]byte("payload"))
	buffer := []byte("payload")
	s.Put(hash, buffer)
	buffer[0] = 'X'

	data, _ := s.Get(hash)
	if "payload" != string(data) {
		t.Fatal("Put should copy its input, not alias it")
	}
}
