package entrylog

import (
	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/fault"
)

// Join - integrate a batch of remote entries: set-difference against
// what's already held, verify signature and append-permission for
// each, defer entries whose parent hasn't arrived yet, recompute
// heads and the clock, and optionally cut back to size. Returns the
// number of entries actually integrated.
func (l *Log) Join(incoming []*entry.Entry, resolver IdentityResolver, size int) int {

	l.mu.Lock()
	defer l.mu.Unlock()

	added := 0
	for _, e := range incoming {
		if _, exists := l.entries[e.Hash]; exists {
			continue
		}
		if _, inFlight := l.insertions.Get(e.Hash.String()); inFlight {
			continue
		}
		l.insertions.Add(e.Hash.String(), struct{}{})

		err := l.integrateLocked(e, resolver)
		l.insertions.Remove(e.Hash.String())

		if nil != err {
			if fault.ErrParentNotFound != err && nil != l.log {
				l.log.Warnf("rejecting entry %s: %v", e.Hash, err)
			}
			continue
		}
		added += 1
	}

	l.recomputeHeadsLocked()
	l.refreshClockLocked()

	if size > 0 && len(l.entries) > size {
		l.cutLocked(size)
	}

	return added
}

// integrateLocked - verify and insert a single entry; returns
// fault.ErrParentNotFound (not a rejection) when a parent must first
// be fetched or awaited
func (l *Log) integrateLocked(e *entry.Entry, resolver IdentityResolver) error {

	if nil != l.verifier {
		identity := e.Identity
		if nil != resolver {
			id, err := resolver(e)
			if nil != err {
				return err
			}
			identity = id
		}
		if err := entry.Verify(e, l.verifier, identity); nil != err {
			return err
		}
	}

	if nil != l.canAppend && !l.canAppend(e) {
		return fault.ErrAccessDenied
	}

	parents := make([]*entry.Entry, 0, len(e.Next))
	for _, p := range e.Next {
		pe := l.resolveLocked(p)
		if nil == pe {
			l.deferEntryLocked(e, resolver, p)
			return fault.ErrParentNotFound
		}
		parents = append(parents, pe)
	}

	var maxParentTime uint64
	maxGID := ""
	for _, pe := range parents {
		if pe.Clock.Time > maxParentTime {
			maxParentTime = pe.Clock.Time
		}
		if pe.GID > maxGID {
			maxGID = pe.GID
		}
	}
	if len(parents) > 0 {
		if e.Clock.Time <= maxParentTime {
			return fault.ErrClockNotMonotonic
		}
		if e.GID != maxGID {
			return fault.ErrGIDMismatch
		}
	}

	l.entries[e.Hash] = e
	if nil != l.store {
		l.store.Put(e)
	}
	l.promoteAwaitingLocked(e.Hash)
	return nil
}

// refreshClockLocked - the log's clock tracks the maximum clock time
// across every entry currently held
func (l *Log) refreshClockLocked() {
	for _, e := range l.entries {
		if e.Clock.Time > l.clockTime {
			l.clockTime = e.Clock.Time
		}
	}
}
