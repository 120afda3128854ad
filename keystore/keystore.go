package keystore

import "github.com/bitmark-inc/peerlog/entry"

// KeyType - the cryptographic purpose of a managed key
type KeyType int

const (
	// KeyTypeSigning - an Ed25519 signing key
	KeyTypeSigning KeyType = iota
	// KeyTypeBox - an X25519 key for nacl/box encryption
	KeyTypeBox
)

// Key - the public half of a managed key, returned by CreateKey
type Key struct {
	ID        string
	Type      KeyType
	Group     string
	PublicKey []byte
}

// Signature - alias of entry.Signature, not a distinct type: a
// Keystore's Sign/Verify methods must satisfy entry.Signer/Verifier
// structurally, which only works if both packages name the exact same
// type.
type Signature = entry.Signature

// Keystore - the collaborator contract entry/entrylog/stream/sharedlog
// depend on for signing, verification and key provisioning. entry's
// Signer/Verifier interfaces are satisfied structurally by any
// Keystore without either package importing the other.
type Keystore interface {
	Sign(message []byte) (Signature, error)
	Verify(signature Signature, publicKey []byte, message []byte) bool
	CreateKey(id string, typ KeyType, group string) (Key, error)
}
