package sharedlog

import (
	"time"

	"github.com/bitmark-inc/peerlog/config"
)

// RoleState is this peer's own position in the role state machine:
// Observer, Replicator{Factor,Timestamp} or
// AdaptiveReplicator{Factor,Limits,Timestamp}. Kind carries which one;
// Limits is only meaningful for AdaptiveReplicator.
type RoleState struct {
	Kind      config.Role
	Factor    float64
	Limits    config.Replicas
	Timestamp time.Time
}

// initialRole - the state machine's open transition: the role named
// in Configuration.Role, defaulting to AdaptiveReplicator at factor 1
// when the config leaves it blank.
func initialRole(cfg *config.Configuration) RoleState {
	kind := config.Role(cfg.Role)
	if "" == kind {
		kind = config.RoleAdaptiveReplicator
	}
	factor := 0.0
	if config.RoleObserver != kind {
		factor = 1.0
	}
	return RoleState{
		Kind:      kind,
		Factor:    factor,
		Limits:    cfg.Replicas,
		Timestamp: time.Now(),
	}
}
