// Package entrylog implements the append-only, content-addressed entry
// DAG: appending new entries with amortized parent references, joining
// a remote peer's entries into the local log, deterministic traversal,
// and length-bounded recycling.
package entrylog
