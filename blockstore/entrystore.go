package blockstore

import (
	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/wire"
)

// EntryStore - lifts a byte-level Store to the entry.Entry level
// entrylog.BlockStore expects, round-tripping entries through
// wire.EncodeEntry/DecodeEntry. Decode failures (a corrupt or
// truncated record) are treated as a cache miss rather than a panic:
// the caller already has no way to recover the entry either way, and
// entrylog only ever consults its block store as a fallback behind an
// in-memory map.
type EntryStore struct {
	store Store
}

// NewEntryStore - wrap store as an entrylog.BlockStore
func NewEntryStore(store Store) *EntryStore {
	return &EntryStore{store: store}
}

// Get - fetch and decode the entry stored under hash
func (es *EntryStore) Get(hash entry.Hash) (*entry.Entry, bool) {
	data, ok := es.store.Get(hash)
	if !ok {
		return nil, false
	}
	e, err := wire.DecodeEntry(data)
	if nil != err {
		return nil, false
	}
	return e, true
}

// Put - encode and persist e under its own hash
func (es *EntryStore) Put(e *entry.Entry) {
	es.store.Put(e.Hash, wire.EncodeEntry(e))
}
