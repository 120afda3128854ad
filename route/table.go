package route

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/pending"
)

// NextHop - a candidate next-hop neighbor for reaching a target, with
// the round-trip time observed on the ACK that taught us about it
type NextHop struct {
	Neighbor string
	RTT      time.Duration
}

// Table - ACK-learned routes to targets, aged out by TTL or explicit
// Goodbye.
//
// Grounded on pending's sharded TTL-cache idiom: one cache entry per
// (target, neighbor) pair so each next-hop ages out independently; a
// parallel RTT-sorted index answers Primary/NextHops without having
// to scan the whole cache on every lookup.
type Table struct {
	mu    sync.Mutex
	log   *logger.L
	order map[string][]NextHop // target -> next-hops sorted by RTT ascending

	cache *pending.Cache // "target\x00neighbor" -> struct{}, ages out the order entry
}

// New - create an empty routing table
func New(name string, ttl time.Duration, sweep time.Duration) *Table {
	t := &Table{
		log:   logger.New(name),
		order: make(map[string][]NextHop),
	}
	t.cache = pending.New(name+"-routes", ttl, sweep, t.onExpire)
	return t
}

// Stop - halt the TTL sweep
func (t *Table) Stop() {
	t.cache.Stop()
}

func routeKey(target, neighbor string) string {
	return target + "\x00" + neighbor
}

func splitRouteKey(key string) (target, neighbor string, ok bool) {
	idx := strings.IndexByte(key, 0)
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}

// Record - learn (or refresh) that neighbor reaches target with the
// given RTT, as observed from an ACK; refreshes the route's TTL
func (t *Table) Record(target, neighbor string, rtt time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	hops := t.order[target]
	found := false
	for i := range hops {
		if hops[i].Neighbor == neighbor {
			hops[i].RTT = rtt
			found = true
			break
		}
	}
	if !found {
		hops = append(hops, NextHop{Neighbor: neighbor, RTT: rtt})
	}
	sort.Slice(hops, func(i, j int) bool { return hops[i].RTT < hops[j].RTT })
	t.order[target] = hops

	t.cache.Add(routeKey(target, neighbor), struct{}{})
}

// Primary - the lowest-RTT known next-hop for target
func (t *Table) Primary(target string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	hops := t.order[target]
	if 0 == len(hops) {
		return "", false
	}
	return hops[0].Neighbor, true
}

// NextHops - every known next-hop for target, sorted by RTT ascending
func (t *Table) NextHops(target string) []NextHop {
	t.mu.Lock()
	defer t.mu.Unlock()
	hops := t.order[target]
	out := make([]NextHop, len(hops))
	copy(out, hops)
	return out
}

// Goodbye - immediately forget every route learned via neighbor,
// ahead of its natural TTL expiry
func (t *Table) Goodbye(neighbor string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for target, hops := range t.order {
		filtered := hops[:0]
		for _, h := range hops {
			if h.Neighbor == neighbor {
				t.cache.Remove(routeKey(target, neighbor))
				continue
			}
			filtered = append(filtered, h)
		}
		if 0 == len(filtered) {
			delete(t.order, target)
		} else {
			t.order[target] = filtered
		}
	}
}

func (t *Table) onExpire(key string, _ pending.Value) {
	target, neighbor, ok := splitRouteKey(key)
	if !ok {
		return
	}

	t.mu.Lock()
	hops := t.order[target]
	filtered := hops[:0]
	for _, h := range hops {
		if h.Neighbor != neighbor {
			filtered = append(filtered, h)
		}
	}
	if 0 == len(filtered) {
		delete(t.order, target)
	} else {
		t.order[target] = filtered
	}
	t.mu.Unlock()

	if nil != t.log {
		t.log.Debugf("route to %s via %s expired", target, neighbor)
	}
}
