package pending

import (
	"time"
)

// expiry loop - sweeps every shard once per sweep interval, removing
// any record older than timeout
func (state *expiryData) Run(args interface{}, shutdown <-chan struct{}) {

	c := state.owner
	log := c.log

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-time.After(c.sweep):
			for i := 0; i < shards; i += 1 {
				c.cache[i].Lock()
				for k, item := range c.cache[i].table {
					if time.Since(item.timestamp) > c.timeout {
						delete(c.cache[i].table, k)
						if nil != c.onExpire {
							c.onExpire(k, item.value)
						}
						if nil != log {
							log.Debugf("expired: %s", k)
						}
					}
				}
				c.cache[i].Unlock()
			}
		}
	}
}
