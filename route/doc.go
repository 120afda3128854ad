// Package route implements the direct-stream routing table: ACK-based
// next-hop learning with RTT ranking, TTL eviction, and explicit
// Goodbye forgetting.
package route
