package config

import (
	"path/filepath"
	"time"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/util"
)

// Role - the replication role a node starts in
type Role string

const (
	RoleObserver            Role = "observer"
	RoleReplicator          Role = "replicator"
	RoleAdaptiveReplicator  Role = "adaptive_replicator"
)

// Replicas - the min/max replication factor bounds for a log
type Replicas struct {
	Min uint32 `gluamapper:"min"`
	Max uint32 `gluamapper:"max"`
}

// PIDTuning - the pid package's gains and sample window, overridable
// per-deployment the same way the teacher exposes its other timeouts
type PIDTuning struct {
	Kp                float64 `gluamapper:"kp"`
	Ki                float64 `gluamapper:"ki"`
	Kd                float64 `gluamapper:"kd"`
	HistoryWindow     int     `gluamapper:"history_window"`
	TargetMemoryLimit uint64  `gluamapper:"target_memory_limit"`
	TargetOccupancy   float64 `gluamapper:"target_occupancy"`
}

// Configuration - the full set of tunables for a node, loaded from a
// Lua configuration file and then completed programmatically
// (CanReplicate is a Go callback, not Lua-representable).
type Configuration struct {
	Role     string    `gluamapper:"role"`
	Replicas Replicas  `gluamapper:"replicas"`
	PID      PIDTuning `gluamapper:"pid"`

	RespondToIHaveTimeout     time.Duration `gluamapper:"respond_to_i_have_timeout"`
	WaitForReplicatorTimeout  time.Duration `gluamapper:"wait_for_replicator_timeout"`
	WaitForRoleMaturity       time.Duration `gluamapper:"wait_for_role_maturity"`
	PruneConfirmTimeout       time.Duration `gluamapper:"prune_confirm_timeout"`
	AutoDialRetry             time.Duration `gluamapper:"auto_dial_retry"`
	RebalanceDebounceInterval time.Duration `gluamapper:"rebalance_debounce_interval"`

	Listen       []string `gluamapper:"listen"`
	Announce     []string `gluamapper:"announce"`
	SecretKeySeed string   `gluamapper:"secret_key_seed"`

	// TransportPrivateKey is the hex-encoded libp2p identity key (see
	// util.EncodePrivKeyToHex), distinct from SecretKeySeed which
	// derives this peer's entry-signing identity - the two need not be
	// the same key, and rotating one must not rotate the other.
	TransportPrivateKey string `gluamapper:"transport_private_key"`

	StorageDir string `gluamapper:"storage_dir"`
	LogLevel   string `gluamapper:"log_level"`

	// BootstrapDomain, when set, names a DNS domain whose TXT records
	// list dialable bootstrap peer addresses (see package discovery).
	// Empty disables DNS-based bootstrap discovery entirely.
	BootstrapDomain string `gluamapper:"bootstrap_domain"`

	PidFile string             `gluamapper:"pidfile"`
	Logging logger.Configuration `gluamapper:"logging"`

	// CanReplicate decides whether this node is willing to hold a
	// replica of a given log; not representable in Lua, so it is left
	// nil by Parse and must be set by the caller before use.
	CanReplicate func(gid string) bool `gluamapper:"-"`
}

// Default timeouts, matching the distilled spec's pinned defaults
// (SPEC_FULL.md §5); Parse overrides whichever fields the Lua file sets.
const (
	DefaultRespondToIHaveTimeout     = 10 * time.Second
	DefaultWaitForReplicatorTimeout  = 9 * time.Second
	DefaultWaitForRoleMaturity       = 5 * time.Second
	DefaultPruneConfirmTimeout       = 10 * time.Second
	DefaultAutoDialRetry             = 5 * time.Second
	DefaultRebalanceDebounceInterval = time.Second

	// PID defaults - gains and window length are tunables, not derived
	// from first principles in the distilled spec (SPEC_FULL.md §4.6).
	DefaultPIDKp                = 0.6
	DefaultPIDKi                = 0.1
	DefaultPIDKd                = 0.05
	DefaultPIDHistoryWindow     = 10
	DefaultPIDTargetOccupancy   = 0.7
	DefaultPIDTargetMemoryLimit = 512 * 1024 * 1024
)

// defaultConfiguration - the zero-value starting point before the Lua
// file's assignments are mapped on top
func defaultConfiguration() *Configuration {
	return &Configuration{
		Role: string(RoleAdaptiveReplicator),
		Replicas: Replicas{
			Min: 2,
			Max: 5,
		},
		RespondToIHaveTimeout:     DefaultRespondToIHaveTimeout,
		WaitForReplicatorTimeout:  DefaultWaitForReplicatorTimeout,
		WaitForRoleMaturity:       DefaultWaitForRoleMaturity,
		PruneConfirmTimeout:       DefaultPruneConfirmTimeout,
		AutoDialRetry:             DefaultAutoDialRetry,
		RebalanceDebounceInterval: DefaultRebalanceDebounceInterval,
		PID: PIDTuning{
			Kp:                DefaultPIDKp,
			Ki:                DefaultPIDKi,
			Kd:                DefaultPIDKd,
			HistoryWindow:     DefaultPIDHistoryWindow,
			TargetMemoryLimit: DefaultPIDTargetMemoryLimit,
			TargetOccupancy:   DefaultPIDTargetOccupancy,
		},
		LogLevel: "info",
		Logging: logger.Configuration{
			Directory: ".",
			File:      "peerlogd.log",
			Size:      1048576,
			Count:     10,
			Levels: map[string]string{
				logger.DefaultTag: "info",
			},
		},
	}
}

// Parse - read and execute a Lua configuration file, mapping its
// returned table onto a Configuration
func Parse(fileName string) (*Configuration, error) {

	configuration := defaultConfiguration()

	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	// create the global "arg" table; arg[0] = config file
	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	if err := L.DoFile(fileName); err != nil {
		return nil, err
	}

	top := L.Get(L.GetTop())
	table, ok := top.(*lua.LTable)
	if !ok {
		return nil, fault.ErrInvalidStructPointer
	}

	mapperOption := gluamapper.Option{
		NameFunc: func(s string) string { return s },
		TagName:  "gluamapper",
	}
	mapper := gluamapper.Mapper{Option: mapperOption}
	if err := mapper.Map(table, configuration); err != nil {
		return nil, err
	}

	// relative paths in the Lua file are resolved against the
	// configuration file's own directory, matching
	// command/bitmarkd/configuration.go's EnsureAbsolute(DataDirectory,
	// *f) post-processing of every configured file/directory field.
	configDirectory := filepath.Dir(fileName)
	if "" != configuration.StorageDir {
		configuration.StorageDir = util.EnsureAbsolute(configDirectory, configuration.StorageDir)
	}
	if "" != configuration.PidFile {
		configuration.PidFile = util.EnsureAbsolute(configDirectory, configuration.PidFile)
	}
	if "" != configuration.Logging.Directory {
		configuration.Logging.Directory = util.EnsureAbsolute(configDirectory, configuration.Logging.Directory)
	}

	return configuration, nil
}
