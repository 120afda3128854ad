// Package leveldbstore implements blockstore.Store on top of
// goleveldb, grounded on storage.PoolHandle's prefixed single-database
// idiom: every key is the entry hash with a fixed one-byte prefix
// prepended, rather than a dedicated database per concern, since a
// single peer's entry DAG has one logical store rather than
// bitmarkd's separate blocks/index/assets/transactions pools.
package leveldbstore

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/entry"
)

const entryPrefix = 'E'

// Store - a goleveldb-backed blockstore.Store
type Store struct {
	log *logger.L
	db  *leveldb.DB
}

// New - open (creating if absent) the leveldb database at path
func New(name string, path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &ldb_opt.Options{ErrorIfExist: false})
	if nil != err {
		return nil, err
	}
	return &Store{log: logger.New(name), db: db}, nil
}

// Close - release the underlying database handle
func (s *Store) Close() {
	s.db.Close()
}

func prefixedKey(hash entry.Hash) []byte {
	key := make([]byte, 1+entry.Length)
	key[0] = entryPrefix
	copy(key[1:], hash[:])
	return key
}

// Put - store data under hash, overwriting any prior value
func (s *Store) Put(hash entry.Hash, data []byte) {
	if err := s.db.Put(prefixedKey(hash), data, nil); nil != err {
		s.log.Errorf("put %s: %s", hash, err)
	}
}

// Get - fetch the bytes stored under hash
func (s *Store) Get(hash entry.Hash) ([]byte, bool) {
	data, err := s.db.Get(prefixedKey(hash), nil)
	if leveldb.ErrNotFound == err {
		return nil, false
	}
	if nil != err {
		s.log.Errorf("get %s: %s", hash, err)
		return nil, false
	}
	return data, true
}

// Has - true if hash is present
func (s *Store) Has(hash entry.Hash) bool {
	ok, err := s.db.Has(prefixedKey(hash), nil)
	if nil != err {
		s.log.Errorf("has %s: %s", hash, err)
		return false
	}
	return ok
}

// Remove - drop hash, if present
func (s *Store) Remove(hash entry.Hash) {
	if err := s.db.Delete(prefixedKey(hash), nil); nil != err {
		s.log.Errorf("remove %s: %s", hash, err)
	}
}

// Len - number of stored entries, by scanning the prefixed key range
func (s *Store) Len() int {
	rng := &ldb_util.Range{Start: []byte{entryPrefix}, Limit: []byte{entryPrefix + 1}}
	iter := s.db.NewIterator(rng, nil)
	defer iter.Release()

	count := 0
	for iter.Next() {
		count += 1
	}
	return count
}
