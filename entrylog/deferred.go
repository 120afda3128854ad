package entrylog

import "github.com/bitmark-inc/peerlog/entry"

// IdentityResolver - resolves the plaintext creator identity to verify
// an entry's signature against; entries with a plaintext Identity
// field don't need one, only entries whose identity was encrypted for
// this peer via IdentityCipher do
type IdentityResolver func(e *entry.Entry) ([]byte, error)

type deferredItem struct {
	e        *entry.Entry
	resolver IdentityResolver
}

// deferEntryLocked - park an entry whose parent isn't resolvable yet;
// it is retried when that parent is integrated, or dropped after
// deferredTimeout with no sign of the parent
func (l *Log) deferEntryLocked(e *entry.Entry, resolver IdentityResolver, missingParent entry.Hash) {
	key := e.Hash.String()
	if _, exists := l.deferred.Get(key); exists {
		return
	}
	l.deferred.Add(key, deferredItem{e: e, resolver: resolver})
	l.awaiting[missingParent] = append(l.awaiting[missingParent], e.Hash)
}

// removeAwaiting - drop every awaiting-list membership for an entry,
// used when its deferral expires
func (l *Log) removeAwaiting(e *entry.Entry) {
	for parent, children := range l.awaiting {
		filtered := children[:0]
		for _, c := range children {
			if c != e.Hash {
				filtered = append(filtered, c)
			}
		}
		if 0 == len(filtered) {
			delete(l.awaiting, parent)
		} else {
			l.awaiting[parent] = filtered
		}
	}
}

// promoteAwaitingLocked - re-attempt every entry that was waiting on
// parentHash, now that it has just been integrated
func (l *Log) promoteAwaitingLocked(parentHash entry.Hash) {
	children, ok := l.awaiting[parentHash]
	if !ok {
		return
	}
	delete(l.awaiting, parentHash)

	for _, childHash := range children {
		v, ok := l.deferred.Remove(childHash.String())
		if !ok {
			continue
		}
		item, ok := v.(deferredItem)
		if !ok {
			continue
		}
		if err := l.integrateLocked(item.e, item.resolver); nil != err {
			if nil != l.log {
				l.log.Debugf("deferred entry %s still not integrated: %v", item.e.Hash, err)
			}
		}
	}
}
