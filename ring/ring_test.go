package ring_test

import (
	"testing"
	"time"

	"github.com/bitmark-inc/peerlog/ring"
)

func TestUpdateOverwritesSamePeer(t *testing.T) {
	r := ring.New(5 * time.Second)
	r.Update(ring.Range{Peer: "a", Offset: 0.1, Factor: 0.2, Timestamp: time.Now()})
	r.Update(ring.Range{Peer: "a", Offset: 0.5, Factor: 0.1, Timestamp: time.Now()})

	if 1 != r.Len() {
		t.Fatalf("Len() = %d  expected: 1", r.Len())
	}
	got, ok := r.Get("a")
	if !ok || 0.5 != got.Offset {
		t.Fatalf("Get(a) = %+v, %v  expected offset 0.5", got, ok)
	}
}

func TestCoverSetIncludesStartAndWalksForward(t *testing.T) {
	r := ring.New(time.Millisecond)
	now := time.Now().Add(-time.Second)
	r.Update(ring.Range{Peer: "a", Offset: 0.0, Factor: 0.3, Timestamp: now})
	r.Update(ring.Range{Peer: "b", Offset: 0.3, Factor: 0.3, Timestamp: now})
	r.Update(ring.Range{Peer: "c", Offset: 0.6, Factor: 0.3, Timestamp: now})

	peers := r.CoverSet(0.5, "a")
	if 0 == len(peers) || "a" != peers[0] {
		t.Fatalf("expected start peer first, got %v", peers)
	}
	total := 0.0
	for _, p := range peers {
		switch p {
		case "a", "b", "c":
			total += 0.3
		}
	}
	if total < 0.5 {
		t.Fatalf("cover set width %v did not reach requested 0.5", total)
	}
}

func TestCoverSetFallsBackToImmaturePeers(t *testing.T) {
	r := ring.New(time.Hour) // nothing will ever be "mature" within this test
	r.Update(ring.Range{Peer: "a", Offset: 0.0, Factor: 0.5, Timestamp: time.Now()})
	r.Update(ring.Range{Peer: "b", Offset: 0.5, Factor: 0.5, Timestamp: time.Now()})

	peers := r.CoverSet(0.8, "a")
	if 2 != len(peers) {
		t.Fatalf("expected fallback to include the immature peer, got %v", peers)
	}
}

func TestSampleIsDeterministicForFixedRing(t *testing.T) {
	r := ring.New(time.Second)
	now := time.Now()
	r.Update(ring.Range{Peer: "a", Offset: 0.0, Factor: 0.25, Timestamp: now})
	r.Update(ring.Range{Peer: "b", Offset: 0.25, Factor: 0.25, Timestamp: now})
	r.Update(ring.Range{Peer: "c", Offset: 0.5, Factor: 0.25, Timestamp: now})
	r.Update(ring.Range{Peer: "d", Offset: 0.75, Factor: 0.25, Timestamp: now})

	first := r.Sample(0.1, 2)
	second := r.Sample(0.1, 2)

	if len(first) != len(second) {
		t.Fatalf("sample not deterministic: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample not deterministic at %d: %v vs %v", i, first, second)
		}
	}
	if 0 == len(first) {
		t.Fatalf("expected a non-empty sample")
	}
}

func TestArcWrapAroundIsCoveredBySample(t *testing.T) {
	r := ring.New(time.Second)
	now := time.Now()
	r.Update(ring.Range{Peer: "wrap", Offset: 0.9, Factor: 0.2, Timestamp: now})

	peers := r.Sample(0.95, 1)
	if 1 != len(peers) || "wrap" != peers[0] {
		t.Fatalf("expected wraparound arc to cover point 0.95, got %v", peers)
	}
}

func TestHashToUnitIsDeterministicAndInRange(t *testing.T) {
	a := ring.HashToUnit("gid-1")
	b := ring.HashToUnit("gid-1")
	if a != b {
		t.Fatalf("HashToUnit not deterministic: %v vs %v", a, b)
	}
	if a < 0 || a >= 1 {
		t.Fatalf("HashToUnit out of [0,1): %v", a)
	}
	if ring.HashToUnit("gid-2") == a {
		t.Fatalf("expected distinct gids to map to distinct points")
	}
}

func TestTotalParticipationSumsFactors(t *testing.T) {
	r := ring.New(time.Second)
	r.Update(ring.Range{Peer: "a", Offset: 0.0, Factor: 0.3, Timestamp: time.Now()})
	r.Update(ring.Range{Peer: "b", Offset: 0.3, Factor: 0.4, Timestamp: time.Now()})

	if got := r.TotalParticipation(); got < 0.69 || got > 0.71 {
		t.Fatalf("TotalParticipation() = %v  expected ~0.7", got)
	}
}

func TestOldestTimestampTracksEarliest(t *testing.T) {
	r := ring.New(time.Second)
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	r.Update(ring.Range{Peer: "a", Offset: 0.0, Factor: 0.1, Timestamp: newer})
	r.Update(ring.Range{Peer: "b", Offset: 0.5, Factor: 0.1, Timestamp: older})

	got, ok := r.OldestTimestamp()
	if !ok || !got.Equal(older) {
		t.Fatalf("OldestTimestamp() = %v, %v  expected %v, true", got, ok, older)
	}
}

func TestRemoveDropsPeer(t *testing.T) {
	r := ring.New(time.Second)
	r.Update(ring.Range{Peer: "a", Offset: 0.1, Factor: 0.1, Timestamp: time.Now()})
	r.Remove("a")
	if 0 != r.Len() {
		t.Fatalf("Len() = %d  expected: 0", r.Len())
	}
	if _, ok := r.Get("a"); ok {
		t.Fatalf("expected a to be gone")
	}
}
