// Package ring implements the replication ring: a point-on-unit-circle
// assignment of replication responsibility, one arc per known peer.
// Cover-set and sample queries answer "who together holds a replica
// set" and "who are the leaders for this entry group", respectively.
package ring
