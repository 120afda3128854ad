// Package sharedlog is the replication engine: leader selection over
// a ring.Ring, exchange-heads dissemination, quorum-confirmed
// pruning, PID-driven adaptive rebalance, and the
// Observer/Replicator/AdaptiveReplicator role state machine.
//
// A Node owns exactly one entrylog.Log and exactly one ring.Ring; it
// is wired to a stream.Stream for transport and drives it the same
// way entrylog drives its own pending-insertion map - single owner,
// run-to-completion event loop, grounded on
// p2p/statemachine/machine.go's Run(args, shutdown) shape.
package sharedlog
