package ring

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"
	"sync"
	"time"
)

// HashToUnit maps an arbitrary string (a gid, a peer id) onto a
// deterministic point on the unit circle: the first 8 bytes of its
// SHA-256 digest, taken as a big-endian uint64 and scaled into [0,1).
// Offsets and Sample cursors live in this same space, so peer ranges
// and entry groups land in one consistent coordinate system.
func HashToUnit(s string) float64 {
	digest := sha256.Sum256([]byte(s))
	v := binary.BigEndian.Uint64(digest[:8])
	return float64(v) / float64(math.MaxUint64)
}

// Range - a peer's arc [Offset, Offset+Factor) mod 1 on the unit
// circle, together with the time it was last asserted
type Range struct {
	Peer      string
	Offset    float64
	Factor    float64
	Timestamp time.Time
}

// IsMature - true iff now is at least minAge past the range's
// timestamp
func IsMature(r Range, now time.Time, minAge time.Duration) bool {
	return now.Sub(r.Timestamp) >= minAge
}

// Ring - an ordered set of peer ranges, keyed by peer.
//
// Grounded on the teacher's avl package's exported shape (ordered
// insert-by-key with overwrite-on-duplicate, First/Next iteration,
// indexed Get) rather than a literal port of its node/rotation
// internals: a ring holds one arc per known peer, so at the scale
// this runs at (tens of peers, not millions of blocks) a sorted slice
// gives the same ordered-iteration API at a fraction of the code, and
// avoids carrying over a same-package key-type mismatch between
// avl's insert/search ("Item") and its node allocator ("item").
type Ring struct {
	mu     sync.RWMutex
	byPeer map[string]int // peer -> index into ranges
	ranges []Range        // kept sorted by Offset ascending
	minAge time.Duration
}

// New - create an empty ring; minAge is the default maturity age used
// by CoverSet
func New(minAge time.Duration) *Ring {
	return &Ring{
		byPeer: make(map[string]int),
		minAge: minAge,
	}
}

// Update - insert a new range or overwrite the existing range for its
// peer, then re-sort by offset
func (r *Ring) Update(rg Range) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.byPeer[rg.Peer]; ok {
		r.ranges[idx] = rg
	} else {
		r.ranges = append(r.ranges, rg)
	}
	r.resortLocked()
}

// Remove - drop a peer's range entirely (e.g. on Goodbye)
func (r *Ring) Remove(peer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byPeer[peer]
	if !ok {
		return
	}
	r.ranges = append(r.ranges[:idx], r.ranges[idx+1:]...)
	r.resortLocked()
}

func (r *Ring) resortLocked() {
	sort.Slice(r.ranges, func(i, j int) bool { return r.ranges[i].Offset < r.ranges[j].Offset })
	r.byPeer = make(map[string]int, len(r.ranges))
	for i, rg := range r.ranges {
		r.byPeer[rg.Peer] = i
	}
}

// Get - the current range for a peer
func (r *Ring) Get(peer string) (Range, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byPeer[peer]
	if !ok {
		return Range{}, false
	}
	return r.ranges[idx], true
}

// Len - number of peers currently in the ring
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ranges)
}

// TotalParticipation - the sum of every peer's factor currently in
// the ring; the PID controller's total_participation input.
func (r *Ring) TotalParticipation() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0.0
	for _, rg := range r.ranges {
		total += rg.Factor
	}
	return total
}

// Peers - every peer id currently in the ring, in offset order.
func (r *Ring) Peers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.ranges))
	for i, rg := range r.ranges {
		out[i] = rg.Peer
	}
	return out
}

// OldestTimestamp - the earliest Timestamp among current ranges, and
// whether the ring is non-empty.
func (r *Ring) OldestTimestamp() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if 0 == len(r.ranges) {
		return time.Time{}, false
	}
	oldest := r.ranges[0].Timestamp
	for _, rg := range r.ranges[1:] {
		if rg.Timestamp.Before(oldest) {
			oldest = rg.Timestamp
		}
	}
	return oldest, true
}

// CoverSet - starting at startPeer's range, walk forward around the
// ring consuming peer widths until the accumulated factor reaches
// width. Prefers mature ranges; if a mature-only walk never reaches
// width, a second walk including immature ranges (nearest-first) is
// used instead. startPeer is always included regardless of its own
// maturity.
func (r *Ring) CoverSet(width float64, startPeer string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	startIdx, ok := r.byPeer[startPeer]
	if !ok {
		return nil
	}

	now := time.Now()
	peers, total := r.walkLocked(startIdx, width, now, true)
	if total < width {
		peers, _ = r.walkLocked(startIdx, width, now, false)
	}
	return peers
}

func (r *Ring) walkLocked(startIdx int, width float64, now time.Time, matureOnly bool) ([]string, float64) {
	n := len(r.ranges)
	if 0 == n {
		return nil, 0
	}

	seen := make(map[string]bool, n)
	var peers []string
	total := 0.0

	for i := 0; i < n; i += 1 {
		idx := (startIdx + i) % n
		rg := r.ranges[idx]

		if i > 0 && matureOnly && !IsMature(rg, now, r.minAge) {
			continue
		}
		if seen[rg.Peer] {
			continue
		}
		seen[rg.Peer] = true
		peers = append(peers, rg.Peer)
		total += rg.Factor
		if total >= width {
			break
		}
	}
	return peers, total
}

// Sample - for i in [0,count), probe the point (cursor + i/count) mod
// 1 and collect the peer whose arc covers it, ties broken by relative
// distance to the arc's midpoint. Used for deterministic leader
// selection per entry gid: cursor = hash_to_unit(gid).
func (r *Ring) Sample(cursor float64, count int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if 0 == len(r.ranges) || count <= 0 {
		return nil
	}

	seen := make(map[string]bool, count)
	var peers []string
	for i := 0; i < count; i += 1 {
		point := math.Mod(cursor+float64(i)/float64(count), 1.0)
		peer := r.peerCoveringLocked(point)
		if "" == peer || seen[peer] {
			continue
		}
		seen[peer] = true
		peers = append(peers, peer)
	}
	return peers
}

func (r *Ring) peerCoveringLocked(point float64) string {
	best := ""
	bestDist := math.MaxFloat64
	for _, rg := range r.ranges {
		if !arcContains(rg.Offset, rg.Factor, point) {
			continue
		}
		mid := math.Mod(rg.Offset+rg.Factor/2.0, 1.0)
		dist := math.Abs(point - mid)
		if dist > 0.5 {
			dist = 1.0 - dist
		}
		if dist < bestDist {
			bestDist = dist
			best = rg.Peer
		}
	}
	return best
}

// arcContains - whether [offset, offset+factor) mod 1 covers point,
// handling the arc that wraps past 1.0
func arcContains(offset, factor, point float64) bool {
	end := offset + factor
	if end <= 1.0 {
		return point >= offset && point < end
	}
	return point >= offset || point < math.Mod(end, 1.0)
}
