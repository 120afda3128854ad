package entry

import "encoding/hex"

// Signature - a detached signature over an entry's canonical bytes
type Signature []byte

// String - hex representation, for use by the fmt package (%s)
func (s Signature) String() string {
	return hex.EncodeToString(s)
}

// Signer - the subset of the keystore collaborator contract Create
// needs; satisfied structurally by keystore.Keystore without entry
// importing the keystore package
type Signer interface {
	Sign(message []byte) (Signature, error)
}

// Verifier - the subset of the keystore collaborator contract Verify
// needs
type Verifier interface {
	Verify(signature Signature, publicKey []byte, message []byte) bool
}
