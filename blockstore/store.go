package blockstore

import "github.com/bitmark-inc/peerlog/entry"

// Store - the durable key/value contract a content-addressed entry
// DAG is persisted through; concrete adapters live in subpackages.
type Store interface {
	Put(hash entry.Hash, data []byte)
	Get(hash entry.Hash) ([]byte, bool)
	Has(hash entry.Hash) bool
	Remove(hash entry.Hash)
	Len() int
}
