// Package messagebus - an internal pub-sub fan-out used to disseminate
// node-lifecycle events (role transitions, prune completions, join
// completions) to whichever package cares, without ad hoc callbacks.
package messagebus
