package leveldbstore

import (
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/peerlog/entry"
)

func TestPutGetRemoveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New("test-leveldbstore", filepath.Join(dir, "blocks.leveldb"))
	if nil != err {
		t.Fatalf("New: %s", err)
	}
	defer s.Close()

	hash := entry.NewHash([]byte("payload"))
	s.Put(hash, []byte("payload"))

	data, ok := s.Get(hash)
	if !ok || "payload" != string(data) {
		t.Fatalf("Get: got %q, %v", data, ok)
	}
	if !s.Has(hash) {
		t.Fatal("Has should report true for a stored hash")
	}
	if 1 != s.Len() {
		t.Fatalf("wrong length: %d", s.Len())
	}

	s.Remove(hash)
	if s.Has(hash) {
		t.Fatal("expected hash to be gone after Remove")
	}
	if 0 != s.Len() {
		t.Fatalf("wrong length after remove: %d", s.Len())
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	s, err := New("test-leveldbstore", filepath.Join(dir, "blocks.leveldb"))
	if nil != err {
		t.Fatalf("New: %s", err)
	}
	defer s.Close()

	_, ok := s.Get(entry.NewHash([]byte("missing")))
	if ok {
		t.Fatal("expected a miss for an absent hash")
	}
}
