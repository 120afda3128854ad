package pending

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/background"
)

// number of table shards must be a power of 2
// and mask is the corresponding bit mask
// only the first byte of the key is used
const (
	shards = 16         // maximum value: 256
	mask   = shards - 1 // bit mask
)

// Value - the payload held alongside an expiry timestamp
type Value interface{}

type dataItem struct {
	value     Value
	timestamp time.Time
}

// lockable map
type lockable struct {
	sync.RWMutex
	table map[string]dataItem
}

// expiry background process, one per Cache
type expiryData struct {
	owner *Cache
}

// Cache - a sharded, TTL-expiring string-keyed map
//
// used by entrylog to hold entries that arrived before their parents,
// and by route to age out stale next-hop records. Each caller owns its
// own Cache instance rather than sharing a package-level singleton,
// since the two use sites need independent timeouts and expiry
// callbacks.
type Cache struct {
	log        *logger.L
	cache      [shards]lockable
	timeout    time.Duration
	sweep      time.Duration
	onExpire   func(key string, value Value)
	background *background.T

	expiry expiryData
}

// New - create a cache with the given per-item timeout and sweep
// interval. onExpire, if non-nil, is invoked (from the sweep
// goroutine) for every item removed by expiry.
func New(name string, timeout time.Duration, sweep time.Duration, onExpire func(key string, value Value)) *Cache {

	c := &Cache{
		log:      logger.New(name),
		timeout:  timeout,
		sweep:    sweep,
		onExpire: onExpire,
	}
	for i := 0; i < shards; i += 1 {
		c.cache[i] = lockable{
			table: make(map[string]dataItem, 256),
		}
	}
	c.expiry.owner = c

	c.background = background.Start(background.Processes{&c.expiry}, nil)
	return c
}

// Stop - halt the expiry sweep
func (c *Cache) Stop() {
	background.Stop(c.background)
}

func shardOf(key string) byte {
	if 0 == len(key) {
		return 0
	}
	return key[0] & mask
}

// Add - store or refresh a record, resetting its expiry clock
func (c *Cache) Add(key string, value Value) {
	n := shardOf(key)
	c.cache[n].Lock()
	c.cache[n].table[key] = dataItem{value: value, timestamp: time.Now()}
	c.cache[n].Unlock()
}

// Get - fetch a record without affecting its expiry clock
func (c *Cache) Get(key string) (Value, bool) {
	n := shardOf(key)
	c.cache[n].RLock()
	defer c.cache[n].RUnlock()
	record, ok := c.cache[n].table[key]
	if !ok {
		return nil, false
	}
	return record.value, true
}

// Remove - delete a record, returning its value if present
func (c *Cache) Remove(key string) (Value, bool) {
	n := shardOf(key)
	c.cache[n].Lock()
	defer c.cache[n].Unlock()
	record, ok := c.cache[n].table[key]
	if !ok {
		return nil, false
	}
	delete(c.cache[n].table, key)
	return record.value, true
}

// Len - total number of live records across all shards
func (c *Cache) Len() int {
	n := 0
	for i := 0; i < shards; i += 1 {
		c.cache[i].RLock()
		n += len(c.cache[i].table)
		c.cache[i].RUnlock()
	}
	return n
}
