package blockstore

import (
	"testing"
	"time"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/blockstore/memstore"
)

func TestCachedStoreServesFromCacheAheadOfStore(t *testing.T) {
	backing := memstore.New()
	cached := NewCachedStore(backing, time.Minute)
	hash := entry.NewHash([]byte("payload"))

	cached.Put(hash, []byte("payload"))
	backing.Remove(hash) // mutate the backing store directly behind the cache's back

	data, ok := cached.Get(hash)
	if !ok {
		t.Fatal("expected the cached value to still be served")
	}
	if "payload" != string(data) {
		t.Fatalf("wrong data: %q", data)
	}
}

func TestCachedStoreFallsThroughOnMiss(t *testing.T) {
	backing := memstore.New()
	cached := NewCachedStore(backing, time.Minute)
	hash := entry.NewHash([]byte("payload"))

	backing.Put(hash, []byte("payload"))

	data, ok := cached.Get(hash)
	if !ok {
		t.Fatal("expected a hit by falling through to the backing store")
	}
	if "payload" != string(data) {
		t.Fatalf("wrong data: %q", data)
	}
}

func TestCachedStoreRemoveTombstonesFurtherGets(t *testing.T) {
	backing := memstore.New()
	cached := NewCachedStore(backing, time.Minute)
	hash := entry.NewHash([]byte("payload"))

	cached.Put(hash, []byte("payload"))
	cached.Remove(hash)

	if cached.Has(hash) {
		t.Fatal("expected Has to report false after Remove")
	}
	if _, ok := cached.Get(hash); ok {
		t.Fatal("expected Get to miss after Remove")
	}
}
