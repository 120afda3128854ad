package entry

import "bytes"

// Clock - a Lamport clock; ID is the creator's public-key bytes
type Clock struct {
	ID   []byte
	Time uint64
}

// Compare - Lamport-ordered comparison with tiebreak on clock id bytes
//
// returns -1, 0, +1 the way sort.Search-friendly comparators do
func (c Clock) Compare(other Clock) int {
	if c.Time < other.Time {
		return -1
	}
	if c.Time > other.Time {
		return 1
	}
	return bytes.Compare(c.ID, other.ID)
}

// After - true if c is strictly later than other
func (c Clock) After(other Clock) bool {
	return c.Compare(other) > 0
}
