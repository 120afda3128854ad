package entrylog

import "github.com/bitmark-inc/peerlog/entry"

// resolveLocked - look up an entry locally, falling back to the block
// store on demand; a store hit is cached into the local index
func (l *Log) resolveLocked(hash entry.Hash) *entry.Entry {
	if e, ok := l.entries[hash]; ok {
		return e
	}
	if nil == l.store {
		return nil
	}
	if e, ok := l.store.Get(hash); ok {
		l.entries[hash] = e
		return e
	}
	return nil
}

// traverseLocked - breadth-first through Next (parent) links, one
// level at a time, each level ordered by l.sort before being appended
// so that the result is deterministic for a fixed sort function
func (l *Log) traverseLocked(roots []entry.Hash, amount int, endHash *entry.Hash) []*entry.Entry {

	visited := make(map[entry.Hash]bool, len(roots))
	level := make([]*entry.Entry, 0, len(roots))
	for _, r := range roots {
		if visited[r] {
			continue
		}
		visited[r] = true
		if e := l.resolveLocked(r); nil != e {
			level = append(level, e)
		}
	}

	var order []*entry.Entry
	for len(level) > 0 {
		l.sortEntries(level)
		var next []*entry.Entry
		for _, e := range level {
			if amount > 0 && len(order) >= amount {
				return order
			}
			order = append(order, e)
			if nil != endHash && e.Hash == *endHash {
				return order
			}
			for _, p := range e.Next {
				if visited[p] {
					continue
				}
				visited[p] = true
				if pe := l.resolveLocked(p); nil != pe {
					next = append(next, pe)
				}
			}
		}
		level = next
	}
	return order
}

// Traverse - breadth-first walk through Next links starting at roots
// (defaulting to the current heads), stopping after amount entries
// (0 = unbounded) or upon reaching endHash
func (l *Log) Traverse(roots []entry.Hash, amount int, endHash *entry.Hash) []*entry.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if nil == roots {
		roots = headHashes(l.heads)
	}
	return l.traverseLocked(roots, amount, endHash)
}

// selectReferencesLocked - the power-of-two amortized reference
// schedule: the k-th reference is the entry at position
// min(2^k-1, N-1) in a full traversal from the current heads
func (l *Log) selectReferencesLocked() []entry.Hash {
	if 0 == len(l.heads) {
		return nil
	}
	traversal := l.traverseLocked(headHashes(l.heads), 0, nil)
	if 0 == len(traversal) {
		return nil
	}
	var refs []entry.Hash
	for k := 0; ; k += 1 {
		pos := (1 << uint(k)) - 1
		last := pos >= len(traversal)-1
		if last {
			pos = len(traversal) - 1
		}
		refs = append(refs, traversal[pos].Hash)
		if last {
			break
		}
	}
	return refs
}
