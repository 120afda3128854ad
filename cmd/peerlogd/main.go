package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/background"
	"github.com/bitmark-inc/peerlog/blockstore"
	"github.com/bitmark-inc/peerlog/blockstore/leveldbstore"
	"github.com/bitmark-inc/peerlog/blockstore/memstore"
	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/discovery"
	"github.com/bitmark-inc/peerlog/entrylog"
	"github.com/bitmark-inc/peerlog/keystore"
	"github.com/bitmark-inc/peerlog/keystore/local"
	"github.com/bitmark-inc/peerlog/ring"
	"github.com/bitmark-inc/peerlog/route"
	"github.com/bitmark-inc/peerlog/sharedlog"
	"github.com/bitmark-inc/peerlog/stream"
	"github.com/bitmark-inc/peerlog/transport/libp2p"
	"github.com/bitmark-inc/peerlog/util"
)

const (
	routeTTL   = 10 * time.Minute
	routeSweep = time.Minute

	entryCacheTTL = 5 * time.Minute
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const signingKeyID = "node-identity"

func main() {
	app := cli.NewApp()
	app.Name = "peerlogd"
	app.Usage = "run a peerlog gossip-replicated log node"
	app.Version = version
	app.HideVersion = true

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "",
			Usage: "*configuration `FILE`",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "suppress the startup/shutdown banner",
		},
	}
	app.Action = runNode

	if err := app.Run(os.Args); nil != err {
		fmt.Fprintf(os.Stderr, "peerlogd: %s\n", err)
		os.Exit(1)
	}
}

// runNode wires every collaborator the node needs and blocks until a
// shutdown signal arrives, following command/bitmarkd/main.go's
// ordered Initialise/defer-Finalise-per-subsystem shape.
func runNode(c *cli.Context) error {
	configFile := c.String("config-file")
	if "" == configFile {
		return cli.NewExitError("peerlogd: a --config-file is required", 1)
	}

	cfg, err := config.Parse(configFile)
	if nil != err {
		return cli.NewExitError(fmt.Sprintf("peerlogd: configuration error: %s", err), 1)
	}

	if err := logger.Initialise(cfg.Logging); nil != err {
		return cli.NewExitError(fmt.Sprintf("peerlogd: logger setup failed: %s", err), 1)
	}
	defer logger.Finalise()

	log := logger.New("main")
	log.Infof("starting, version %s", version)
	defer log.Info("finished")

	if "" != cfg.PidFile {
		lockFile, err := os.OpenFile(cfg.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if nil != err {
			if os.IsExist(err) {
				return cli.NewExitError("peerlogd: another instance is already running", 1)
			}
			return cli.NewExitError(fmt.Sprintf("peerlogd: pid file creation failed: %s", err), 1)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(cfg.PidFile)
	}

	var ks *local.Keystore
	if "" != cfg.SecretKeySeed {
		seed, err := decodeSeed(cfg.SecretKeySeed)
		if nil != err {
			return cli.NewExitError(fmt.Sprintf("peerlogd: secret_key_seed: %s", err), 1)
		}
		ks = local.NewFromSeed(seed)
	} else {
		log.Warn("no secret_key_seed configured, generating a fresh signing identity")
		ks = local.New()
	}
	signingKey, err := ks.CreateKey(signingKeyID, keystore.KeyTypeSigning, "node")
	if nil != err {
		return cli.NewExitError(fmt.Sprintf("peerlogd: keystore: %s", err), 1)
	}
	log.Infof("entry-signing identity: %s", base58.Encode(signingKey.PublicKey))

	var store blockstore.Store
	if "" != cfg.StorageDir {
		if util.EnsureFileExists(cfg.StorageDir) {
			log.Infof("resuming entry store at %s", cfg.StorageDir)
		} else {
			log.Infof("initializing a new entry store at %s", cfg.StorageDir)
		}
		levelStore, err := leveldbstore.New("blockstore", cfg.StorageDir)
		if nil != err {
			return cli.NewExitError(fmt.Sprintf("peerlogd: blockstore: %s", err), 1)
		}
		defer levelStore.Close()
		store = blockstore.NewCachedStore(levelStore, entryCacheTTL)
	} else {
		log.Warn("no storage_dir configured, running with an in-memory entry store")
		store = memstore.New()
	}
	entryStore := blockstore.NewEntryStore(store)

	host, err := libp2p.New("transport", libp2p.Config{
		Listen:     cfg.Listen,
		Announce:   cfg.Announce,
		PrivateKey: cfg.TransportPrivateKey,
	})
	if nil != err {
		return cli.NewExitError(fmt.Sprintf("peerlogd: transport: %s", err), 1)
	}
	defer host.Close()
	log.Infof("local peer id: %s", host.LocalID())

	announceAddress := dialableAnnounceAddress(cfg.Announce, host.LocalID())

	entries := entrylog.New(entrylog.Options{
		Name:     "entrylog",
		Store:    entryStore,
		Verifier: ks,
	})

	peerRing := ring.New(cfg.WaitForRoleMaturity)
	routeTable := route.New("route", routeTTL, routeSweep)
	defer routeTable.Stop()

	strm := stream.New(stream.Options{
		Name:          "stream",
		Transport:     host,
		Route:         routeTable,
		Keystore:      ks,
		SigningKey:    signingKey,
		AutoDialRetry: cfg.AutoDialRetry,
	})

	node := sharedlog.New(sharedlog.Options{
		Name:            "sharedlog",
		LocalID:         host.LocalID(),
		Config:          cfg,
		Log:             entries,
		Ring:            peerRing,
		Stream:          strm,
		Identity:        signingKey.PublicKey,
		Signer:          ks,
		AnnounceAddress: announceAddress,
	})
	strm.SetDeliver(node.HandleMessage)

	strm.Start()
	defer strm.Stop()
	node.Start()
	defer node.Stop()

	bg := background.Start(background.Processes{
		discovery.New("discovery", cfg.BootstrapDomain, host),
	}, nil)
	defer background.Stop(bg)

	watchShutdown := make(chan struct{})
	go watchConfig(configFile, node, log, watchShutdown)
	defer close(watchShutdown)

	if !c.Bool("quiet") {
		fmt.Printf("peerlogd running, waiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…\n")
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	log.Info("shutting down…")

	return nil
}

// dialableAnnounceAddress builds the multiaddr this node advertises on
// a gid's presence topic (see sharedlog/presence.go), combining the
// first configured announce host:port with localID the way
// transport/libp2p.Host.Dial expects to receive it
// (/ip4|ip6/.../tcp/.../p2p/<id>). Empty if no announce address is
// configured, or if it does not parse as host:port.
func dialableAnnounceAddress(announce []string, localID string) string {
	if 0 == len(announce) {
		return ""
	}
	version, ip, port, err := util.ParseHostPort(announce[0])
	if nil != err {
		return ""
	}
	return fmt.Sprintf("/%s/%s/tcp/%s/p2p/%s", version, ip, port, localID)
}

func decodeSeed(hexSeed string) ([32]byte, error) {
	var seed [32]byte
	decoded, err := hex.DecodeString(hexSeed)
	if nil != err {
		return seed, err
	}
	if 32 != len(decoded) {
		return seed, fmt.Errorf("secret_key_seed: expected 32 bytes, got %d", len(decoded))
	}
	copy(seed[:], decoded)
	return seed, nil
}
