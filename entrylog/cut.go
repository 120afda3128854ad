package entrylog

import "github.com/bitmark-inc/peerlog/entry"

// cutLocked - retain the newest size entries in sort order and rebuild
// heads; a no-op when already at or below size
func (l *Log) cutLocked(size int) {
	if size <= 0 || len(l.entries) <= size {
		return
	}

	all := make([]*entry.Entry, 0, len(l.entries))
	for _, e := range l.entries {
		all = append(all, e)
	}
	l.sortEntries(all)

	keep := all[len(all)-size:]
	kept := make(map[entry.Hash]*entry.Entry, len(keep))
	for _, e := range keep {
		kept[e.Hash] = e
	}
	l.entries = kept
	l.recomputeHeadsLocked()
}

// Cut - retain the newest size entries and rebuild heads
func (l *Log) Cut(size int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cutLocked(size)
}
