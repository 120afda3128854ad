package messagebus

import (
	"sync"
)

// Message - an event travelling through a Broadcaster
type Message struct {
	Command    string
	Parameters [][]byte
}

// Broadcaster - a fan-out channel: every call to Chan registers a new
// listener, and Send delivers to all of them. A listener that is not
// keeping up simply misses messages sent while its buffer is full
// rather than blocking the sender.
type Broadcaster struct {
	sync.Mutex
	listeners []chan Message
}

// Chan - register a new listener with the given buffer size
func (b *Broadcaster) Chan(size int) <-chan Message {
	b.Lock()
	defer b.Unlock()
	ch := make(chan Message, size)
	b.listeners = append(b.listeners, ch)
	return ch
}

// Send - deliver an event to every registered listener
func (b *Broadcaster) Send(command string, parameters ...[]byte) {
	b.Lock()
	defer b.Unlock()
	m := Message{Command: command, Parameters: parameters}
	for _, ch := range b.listeners {
		select {
		case ch <- m:
		default:
		}
	}
}

// busType - the fixed set of named busses this repo needs
type busType struct {
	RoleChanged    Broadcaster // sharedlog: Observer/Replicator/AdaptiveReplicator transitions
	PruneCompleted Broadcaster // sharedlog: a RequestIPrune/ResponseIPrune exchange finished
	JoinCompleted  Broadcaster // sharedlog: a Join merged a remote head into the local DAG
	Internal       Broadcaster // catch-all, mirrors the teacher's single global queue
}

// Bus - the shared set of event channels for this process
var Bus busType
