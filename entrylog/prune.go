package entrylog

import "github.com/bitmark-inc/peerlog/entry"

// EntriesByGID - every locally-held entry with the given gid, in no
// particular order. Used by the pruning path to find everything a
// peer must shed once it's no longer that gid's leader - Heads alone
// isn't enough, since a gid's non-head ancestors need shedding too.
func (l *Log) EntriesByGID(gid string) []*entry.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*entry.Entry
	for _, e := range l.entries {
		if gid == e.GID {
			out = append(out, e)
		}
	}
	return out
}

// Prune drops entries by hash once a quorum of other leaders has
// confirmed they already hold them; heads are recomputed afterward so
// a pruned entry doesn't linger as a dangling reference target.
func (l *Log) Prune(hashes []entry.Hash) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for _, h := range hashes {
		if _, ok := l.entries[h]; ok {
			delete(l.entries, h)
			removed += 1
		}
	}
	if removed > 0 {
		l.recomputeHeadsLocked()
	}
	return removed
}
