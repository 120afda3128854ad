// Package blockstore declares the durable byte-store contract the
// entry DAG is persisted through, plus an EntryStore adapter that
// lifts it to the entry.Entry level entrylog depends on. Concrete
// stores live in subpackages (blockstore/memstore,
// blockstore/leveldbstore).
package blockstore
