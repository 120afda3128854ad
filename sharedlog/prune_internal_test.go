package sharedlog

import (
	"testing"

	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/entry"
)

func testHash(b byte) entry.Hash {
	var h entry.Hash
	h[0] = b
	return h
}

func TestPruneRoundQuorumRequiresDistinctConfirmers(t *testing.T) {
	hashes := []entry.Hash{testHash(1), testHash(2)}
	round := newPruneRound("gid-1", hashes, 2)

	round.recordResponse("peer-a", hashes)
	if round.isQuorumReached() {
		t.Fatalf("quorum should not be reached with a single confirmer")
	}

	round.recordResponse("peer-b", []entry.Hash{testHash(1)})
	if round.isQuorumReached() {
		t.Fatalf("quorum should not be reached until every hash clears the threshold")
	}

	round.recordResponse("peer-b", []entry.Hash{testHash(2)})
	if !round.isQuorumReached() {
		t.Fatalf("expected quorum once both hashes have 2 distinct confirmers")
	}
}

func TestPruneRoundClosedIgnoresLateResponses(t *testing.T) {
	hashes := []entry.Hash{testHash(1)}
	round := newPruneRound("gid-1", hashes, 1)

	round.recordResponse("peer-a", hashes)
	select {
	case <-round.done:
	default:
		t.Fatalf("expected done to be closed once quorum of 1 is reached")
	}

	round.recordResponse("peer-b", hashes)
	if 1 != len(round.confirmed) {
		// recordResponse returns early once closed, so peer-b must not
		// have been recorded.
		t.Fatalf("closed round must not record further confirmers, got %d", len(round.confirmed))
	}
}

func TestContainsHash(t *testing.T) {
	list := []entry.Hash{testHash(1), testHash(2)}
	if !containsHash(list, testHash(2)) {
		t.Fatalf("expected containsHash to find testHash(2)")
	}
	if containsHash(list, testHash(3)) {
		t.Fatalf("did not expect containsHash to find testHash(3)")
	}
}

func TestRelativeChangeExceeds(t *testing.T) {
	if relativeChangeExceeds(0.5, 0.50004, relativeFactorChangeThreshold) {
		t.Fatalf("a change under the threshold should not exceed it")
	}
	if !relativeChangeExceeds(0.5, 0.6, relativeFactorChangeThreshold) {
		t.Fatalf("a 20%% change should exceed the 0.01%% threshold")
	}
	if !relativeChangeExceeds(0, 0.001, relativeFactorChangeThreshold) {
		t.Fatalf("a zero starting factor should fall back to an absolute comparison")
	}
}

func TestInitialRoleDefaultsToAdaptiveReplicator(t *testing.T) {
	cfg := &config.Configuration{}
	role := initialRole(cfg)
	if config.RoleAdaptiveReplicator != role.Kind {
		t.Fatalf("Kind = %v  expected: %v", role.Kind, config.RoleAdaptiveReplicator)
	}
	if 1.0 != role.Factor {
		t.Fatalf("Factor = %v  expected: 1.0", role.Factor)
	}
}

func TestInitialRoleObserverStartsAtZeroFactor(t *testing.T) {
	cfg := &config.Configuration{Role: string(config.RoleObserver)}
	role := initialRole(cfg)
	if 0 != role.Factor {
		t.Fatalf("Factor = %v  expected: 0", role.Factor)
	}
}
