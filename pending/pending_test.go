package pending_test

import (
	"testing"
	"time"

	"github.com/bitmark-inc/peerlog/pending"
)

func TestAddGetRemove(t *testing.T) {

	c := pending.New("test", time.Hour, time.Hour, nil)
	defer c.Stop()

	c.Add("abc", 42)

	v, ok := c.Get("abc")
	if !ok {
		t.Fatalf("expected key to be present")
	}
	if 42 != v.(int) {
		t.Fatalf("value = %v  expected: 42", v)
	}

	if 1 != c.Len() {
		t.Fatalf("len = %d  expected: 1", c.Len())
	}

	removed, ok := c.Remove("abc")
	if !ok || 42 != removed.(int) {
		t.Fatalf("remove returned %v, %t", removed, ok)
	}

	if _, ok := c.Get("abc"); ok {
		t.Fatalf("key should be gone after remove")
	}
}

func TestExpiry(t *testing.T) {

	expired := make(chan string, 1)
	c := pending.New("test-expiry", 10*time.Millisecond, 5*time.Millisecond, func(key string, value pending.Value) {
		expired <- key
	})
	defer c.Stop()

	c.Add("deadbeef", "payload")

	select {
	case key := <-expired:
		if "deadbeef" != key {
			t.Fatalf("expired key = %q  expected: %q", key, "deadbeef")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for expiry")
	}

	if 0 != c.Len() {
		t.Fatalf("len = %d  expected: 0 after expiry", c.Len())
	}
}
