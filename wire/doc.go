// Package wire implements the hand-rolled binary encoding for
// everything that crosses the network: entries, the message envelope,
// exchange-heads batches, prune request/response, role announcements,
// the outer direct-stream frame (header, delivery mode, redundancy),
// and acknowledgements.
//
// Every variable-length field is a varint length prefix (util.ToVarint64)
// followed by its raw bytes, in a fixed field order; this mirrors the
// teacher's own manual byte-packing in p2p/pack.go (length-prefixed
// []byte parameters, big-endian-packed fixed-width fields) rather than
// protobuf — no .proto or generated .pb.go for the message types
// referenced by pack.go ships in the retrieval pack, so there was
// nothing to generate against.
package wire
