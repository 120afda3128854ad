// Package entry implements the atomic, content-addressed unit of
// replication: a signed, optionally-encrypted record with parent
// references and a Lamport clock.
package entry
