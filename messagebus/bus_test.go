package messagebus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/peerlog/messagebus"
)

func TestSendNoListener(t *testing.T) {
	// nothing listening so this must not block
	messagebus.Bus.Internal.Send("ignored")
}

func TestBroadcastFanOut(t *testing.T) {

	commands := []string{"c1", "c2", "c3"}

	const listeners = 5
	var received [listeners]int
	var wg sync.WaitGroup

	for i := 0; i < listeners; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			queue := messagebus.Bus.RoleChanged.Chan(10)
			for range commands {
				<-queue
				received[n] += 1
			}
		}(i)
	}

	time.Sleep(20 * time.Millisecond) // let listeners register

	for _, c := range commands {
		messagebus.Bus.RoleChanged.Send(c)
	}

	wg.Wait()
	for i, n := range received {
		if n != len(commands) {
			t.Errorf("listener[%d] received: %d  expected: %d", i, n, len(commands))
		}
	}
}

func TestParametersCarried(t *testing.T) {

	queue := messagebus.Bus.PruneCompleted.Chan(1)
	messagebus.Bus.PruneCompleted.Send("pruned", []byte("gid-1"))

	select {
	case m := <-queue:
		if "pruned" != m.Command {
			t.Errorf("command = %q  expected: %q", m.Command, "pruned")
		}
		if 1 != len(m.Parameters) || "gid-1" != string(m.Parameters[0]) {
			t.Errorf("parameters = %v  expected: [gid-1]", m.Parameters)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
	}
}
