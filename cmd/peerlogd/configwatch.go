package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/peerlog/config"
	"github.com/bitmark-inc/peerlog/sharedlog"
)

// watchConfig reloads role and replica settings from configFile
// whenever it changes on disk, following
// command/recorderd/file_watcher.go's fsnotify.Watcher-on-one-file
// idiom. Only Role/Replicas are applied live, through
// sharedlog.Node.SetRole: every other field (listen addresses,
// storage location, keys) shapes collaborators that are already
// constructed by the time this watcher starts and would need a
// restart to pick up regardless.
func watchConfig(configFile string, node *sharedlog.Node, log *logger.L, shutdown <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("config watcher: %s", err)
		return
	}
	defer watcher.Close()

	abs, err := filepath.Abs(configFile)
	if nil != err {
		log.Errorf("config watcher: %s", err)
		return
	}
	if err := watcher.Add(filepath.Dir(abs)); nil != err {
		log.Errorf("config watcher: %s", err)
		return
	}

	for {
		select {
		case <-shutdown:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if 0 == event.Op&(fsnotify.Write|fsnotify.Create) {
				continue
			}

			log.Info("configuration file changed, reloading role/replicas")
			cfg, err := config.Parse(configFile)
			if nil != err {
				log.Errorf("config reload failed: %s", err)
				continue
			}
			node.SetRole(config.Role(cfg.Role), roleFactor(cfg), cfg.Replicas)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("config watcher: %s", err)
		}
	}
}

// roleFactor picks the starting factor a reloaded Role should carry,
// matching sharedlog.initialRole's own convention (zero for Observer,
// one otherwise) since the Lua file has no dedicated factor field of
// its own to override it with.
func roleFactor(cfg *config.Configuration) float64 {
	if config.RoleObserver == config.Role(cfg.Role) {
		return 0
	}
	return 1
}
