package blockstore

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/peerlog/entry"
)

// operation - which way a cache entry was last written, following
// storage/data_cache.go's dbCache idiom: a Remove is itself cached as
// a negative entry so a hot-but-deleted key doesn't fall through to
// the backing Store on every repeated lookup.
type operation int

const (
	opPut operation = iota
	opRemove
)

type cacheEntry struct {
	op   operation
	data []byte
}

// CachedStore wraps a Store with a bounded-lifetime read/write-through
// cache, grounded on storage/data_cache.go's dbCache (same
// Get/Set(op)/expiry shape, using the same
// github.com/patrickmn/go-cache package), sized for a single peer's
// working set of recently touched entries rather than bitmarkd's
// per-pool cache of chain records.
type CachedStore struct {
	store Store
	cache *gocache.Cache
}

// NewCachedStore wraps store with a TTL front cache; ttl bounds how
// long an entry stays cached after it was last written by Put, by
// Remove, or by a Get that missed the cache. A cache hit does not
// extend it.
func NewCachedStore(store Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store: store,
		cache: gocache.New(ttl, ttl/2),
	}
}

// Put - write through to the backing store and refresh the cache
func (c *CachedStore) Put(hash entry.Hash, data []byte) {
	c.store.Put(hash, data)
	c.cache.SetDefault(hash.String(), cacheEntry{op: opPut, data: data})
}

// Get - serve from cache when possible, falling through to the
// backing store (and populating the cache) on a miss
func (c *CachedStore) Get(hash entry.Hash) ([]byte, bool) {
	if cached, found := c.cache.Get(hash.String()); found {
		entry := cached.(cacheEntry)
		if opRemove == entry.op {
			return nil, false
		}
		return entry.data, true
	}

	data, ok := c.store.Get(hash)
	if !ok {
		return nil, false
	}
	c.cache.SetDefault(hash.String(), cacheEntry{op: opPut, data: data})
	return data, true
}

// Has - cheap existence check; consults the cache first for the same
// reason Get does, but falls through to the store rather than
// populating the cache with data it doesn't have in hand
func (c *CachedStore) Has(hash entry.Hash) bool {
	if cached, found := c.cache.Get(hash.String()); found {
		return opRemove != cached.(cacheEntry).op
	}
	return c.store.Has(hash)
}

// Remove - write through and cache the tombstone
func (c *CachedStore) Remove(hash entry.Hash) {
	c.store.Remove(hash)
	c.cache.SetDefault(hash.String(), cacheEntry{op: opRemove})
}

// Len - delegates to the backing store; the cache is not authoritative
// for counts, only for individual key lookups
func (c *CachedStore) Len() int {
	return c.store.Len()
}
