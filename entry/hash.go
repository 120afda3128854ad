package entry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bitmark-inc/peerlog/fault"
)

// NewHash - compute the content digest of a byte slice
func NewHash(record []byte) Hash {
	return Hash(sha256.Sum256(record))
}

// Length - number of bytes in a Hash
const Length = 32

// Hash - a fixed-length content digest
//
// grounded on the teacher's blockdigest.Digest idiom, substituting
// crypto/sha256 for argon2 since this hash identifies content rather
// than proving work.
type Hash [Length]byte

// String - hex representation, for use by the fmt package (%s)
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// GoString - hex representation, for use by the fmt package (%#v)
func (h Hash) GoString() string {
	return "<entry.Hash:" + hex.EncodeToString(h[:]) + ">"
}

// IsZero - true for the zero-value hash
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes - byte slice view of the hash
func (h Hash) Bytes() []byte {
	return h[:]
}

// MarshalText - hex text for JSON encoding
func (h Hash) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(Length))
	hex.Encode(buffer, h[:])
	return buffer, nil
}

// UnmarshalText - hex text to Hash for JSON decoding
func (h *Hash) UnmarshalText(s []byte) error {
	if hex.DecodedLen(len(s)) != Length {
		return fault.ErrUndecodable
	}
	buffer := make([]byte, Length)
	n, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	if Length != n {
		return fault.ErrUndecodable
	}
	copy(h[:], buffer)
	return nil
}

// HashFromBytes - convert and validate a byte slice into a Hash
func HashFromBytes(buffer []byte) (Hash, error) {
	var h Hash
	if Length != len(buffer) {
		return h, fault.ErrUndecodable
	}
	copy(h[:], buffer)
	return h, nil
}

// Scan - text scanning support for the fmt package
func (h *Hash) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	})
	if nil != err {
		return err
	}
	return h.UnmarshalText(token)
}
