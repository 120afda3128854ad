package entrylog

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/pending"
)

// BlockStore - on-demand fetch of entries this log does not hold
// locally; satisfied by an adapter over blockstore.Store's byte-level
// contract (see cmd/peerlogd wiring)
type BlockStore interface {
	Get(hash entry.Hash) (*entry.Entry, bool)
	Put(e *entry.Entry)
}

// CanAppendFunc - append-permission policy, consulted for every
// incoming entry during Join; a false result drops the entry silently
type CanAppendFunc func(e *entry.Entry) bool

// SortFunc - total order used for traversal, cut and reference
// selection; defaults to entry.Compare
type SortFunc func(a, b *entry.Entry) int

const deferredTimeout = 30 * time.Second
const deferredSweep = 5 * time.Second

// Options - parameters for New
type Options struct {
	Name      string
	Store     BlockStore
	Verifier  entry.Verifier
	CanAppend CanAppendFunc
	Sort      SortFunc
	MaxLength int // 0 means unbounded
}

// Log - an append-only, content-addressed entry DAG plus its heads
// and entry indices, grounded on the teacher's general
// append/traverse-with-indices idiom
type Log struct {
	mu sync.Mutex
	log *logger.L

	store     BlockStore
	verifier  entry.Verifier
	canAppend CanAppendFunc
	sort      SortFunc
	maxLength int

	entries map[entry.Hash]*entry.Entry
	heads   map[entry.Hash]*entry.Entry

	clockTime uint64

	deferred      *pending.Cache // child hash (hex) -> *entry.Entry, waiting on a missing parent
	awaiting      map[entry.Hash][]entry.Hash // missing parent hash -> waiting child hashes
	insertions    *pending.Cache // hash (hex) -> struct{}, serializes concurrent joins of the same entry
}

// New - create an empty log
func New(opts Options) *Log {

	sortFunc := opts.Sort
	if nil == sortFunc {
		sortFunc = func(a, b *entry.Entry) int { return entry.Compare(a, b) }
	}

	l := &Log{
		log:       logger.New(opts.Name),
		store:     opts.Store,
		verifier:  opts.Verifier,
		canAppend: opts.CanAppend,
		sort:      sortFunc,
		maxLength: opts.MaxLength,
		entries:   make(map[entry.Hash]*entry.Entry),
		heads:     make(map[entry.Hash]*entry.Entry),
		awaiting:  make(map[entry.Hash][]entry.Hash),
	}
	l.deferred = pending.New(opts.Name+"-deferred", deferredTimeout, deferredSweep, l.onDeferredExpire)
	l.insertions = pending.New(opts.Name+"-insertions", deferredTimeout, deferredSweep, nil)
	return l
}

// Stop - halt background expiry sweeps
func (l *Log) Stop() {
	l.deferred.Stop()
	l.insertions.Stop()
}

func (l *Log) onDeferredExpire(key string, value pending.Value) {
	item, ok := value.(deferredItem)
	if !ok {
		return
	}
	l.mu.Lock()
	l.removeAwaiting(item.e)
	l.mu.Unlock()
	if nil != l.log {
		l.log.Warnf("dropping entry %s: parent never arrived", item.e.Hash)
	}
}

// AppendOptions - parameters for Append
type AppendOptions struct {
	Payload     []byte
	GID         string
	MinReplicas uint32
	Signer      entry.Signer

	Recipient           *[32]byte
	SenderBoxPublicKey  *[32]byte
	SenderBoxPrivateKey *[32]byte
	EncryptClock        bool

	Identity []byte
}

// Append - extend the log with a new locally-created entry
func (l *Log) Append(opts AppendOptions) (*entry.Entry, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	newTime := l.clockTime + 1
	for _, h := range l.heads {
		if h.Clock.Time+1 > newTime {
			newTime = h.Clock.Time + 1
		}
	}

	gid := opts.GID
	if "" == gid {
		gid = maxGIDOfHeads(l.heads)
	}
	if "" == gid {
		gid = freshGID()
	}

	next := headHashes(l.heads)
	refs := l.selectReferencesLocked()

	e, err := entry.Create(entry.CreateOptions{
		Payload:             opts.Payload,
		Next:                next,
		Refs:                refs,
		ClockTime:           newTime,
		Identity:            opts.Identity,
		GID:                 gid,
		MinReplicas:         opts.MinReplicas,
		Signer:              opts.Signer,
		Recipient:           opts.Recipient,
		SenderBoxPublicKey:  opts.SenderBoxPublicKey,
		SenderBoxPrivateKey: opts.SenderBoxPrivateKey,
		EncryptClock:        opts.EncryptClock,
	})
	if nil != err {
		return nil, err
	}

	l.insertLocked(e)
	l.recomputeHeadsLocked()
	l.clockTime = newTime

	if nil != l.store {
		l.store.Put(e)
	}

	if l.maxLength > 0 && len(l.entries) > l.maxLength {
		l.cutLocked(l.maxLength)
	}

	return e, nil
}

func freshGID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	h := entry.NewHash(b)
	return h.String()
}

// maxGIDOfHeads - the lexicographically-maximum gid across the current
// heads, or "" if there are none
func maxGIDOfHeads(heads map[entry.Hash]*entry.Entry) string {
	max := ""
	for _, h := range heads {
		if h.GID > max {
			max = h.GID
		}
	}
	return max
}

func headHashes(heads map[entry.Hash]*entry.Entry) []entry.Hash {
	out := make([]entry.Hash, 0, len(heads))
	for h := range heads {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (l *Log) insertLocked(e *entry.Entry) {
	l.entries[e.Hash] = e
}

// recomputeHeadsLocked - heads are exactly the entries whose hash does
// not appear in any other entry's next set
func (l *Log) recomputeHeadsLocked() {
	referenced := make(map[entry.Hash]bool, len(l.entries))
	for _, e := range l.entries {
		for _, n := range e.Next {
			referenced[n] = true
		}
	}
	heads := make(map[entry.Hash]*entry.Entry)
	for h, e := range l.entries {
		if !referenced[h] {
			heads[h] = e
		}
	}
	l.heads = heads
}

// Len - number of entries currently held
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Heads - a snapshot of the current heads
func (l *Log) Heads() []*entry.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entry.Entry, 0, len(l.heads))
	for _, e := range l.heads {
		out = append(out, e)
	}
	l.sortEntries(out)
	return out
}

// Get - fetch a locally-held entry by hash
func (l *Log) Get(hash entry.Hash) (*entry.Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[hash]
	return e, ok
}

func (l *Log) sortEntries(entries []*entry.Entry) {
	sort.Slice(entries, func(i, j int) bool { return l.sort(entries[i], entries[j]) < 0 })
}
