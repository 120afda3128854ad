package local

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/bitmark-inc/peerlog/entry"
	"github.com/bitmark-inc/peerlog/fault"
	"github.com/bitmark-inc/peerlog/keystore"
)

type record struct {
	typ   keystore.KeyType
	group string

	signingPub  ed25519.PublicKey
	signingPriv ed25519.PrivateKey

	boxPub  *[32]byte
	boxPriv *[32]byte
}

// Keystore - an in-process keystore.Keystore; Sign/Verify operate
// against a single "active" signing identity (the first signing key
// created, or whichever id SetActive names), matching a peer having
// exactly one identity it signs entries as.
//
// Grounded on account/private.go's deterministic seed-expansion idiom:
// PrivateKeyFromBase58Seed feeds a fixed secretbox seal of its secret
// key through ed25519.GenerateKey's entropy reader rather than calling
// crypto/rand directly, so the same seed always yields the same key.
// NewFromSeed follows the same shape, keyed by a counter so a single
// seed can deterministically derive more than one key.
type Keystore struct {
	mu     sync.Mutex
	keys   map[string]*record
	active string

	seed    *[32]byte
	counter uint64
}

// New - an empty keystore whose keys are generated from crypto/rand
func New() *Keystore {
	return &Keystore{keys: make(map[string]*record)}
}

// NewFromSeed - an empty keystore whose keys are deterministically
// derived from seed; useful for reproducible test fixtures and for
// restoring an identity from a saved seed rather than generated keys
func NewFromSeed(seed [32]byte) *Keystore {
	return &Keystore{keys: make(map[string]*record), seed: &seed}
}

var expansionNonce = [24]byte{
	0x70, 0x65, 0x65, 0x72, 0x6c, 0x6f, 0x67, 0x2d,
	0x6b, 0x65, 0x79, 0x73, 0x74, 0x6f, 0x72, 0x65,
	0x2d, 0x65, 0x78, 0x70, 0x61, 0x6e, 0x64, 0x00,
}

// expandSeed - deterministic keystream for the counter-th key derived
// from seed, following account/private.go's secretbox-as-PRNG trick
func expandSeed(seed *[32]byte, counter uint64) io.Reader {
	nonce := expansionNonce
	binary.BigEndian.PutUint64(nonce[16:], counter)
	keystream := secretbox.Seal(nil, make([]byte, 64), &nonce, seed)
	return bytes.NewReader(keystream)
}

func (k *Keystore) entropy() io.Reader {
	if nil == k.seed {
		return rand.Reader
	}
	k.counter += 1
	return expandSeed(k.seed, k.counter)
}

// CreateKey - generate and store a new key under id
func (k *Keystore) CreateKey(id string, typ keystore.KeyType, group string) (keystore.Key, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.keys[id]; exists {
		return keystore.Key{}, fault.ErrAlreadyInitialised
	}

	r := &record{typ: typ, group: group}
	var publicKey []byte

	switch typ {
	case keystore.KeyTypeSigning:
		pub, priv, err := ed25519.GenerateKey(k.entropy())
		if nil != err {
			return keystore.Key{}, err
		}
		r.signingPub, r.signingPriv = pub, priv
		publicKey = []byte(pub)

	case keystore.KeyTypeBox:
		pub, priv, err := box.GenerateKey(k.entropy())
		if nil != err {
			return keystore.Key{}, err
		}
		r.boxPub, r.boxPriv = pub, priv
		publicKey = pub[:]

	default:
		return keystore.Key{}, fault.ErrInvalidStructPointer
	}

	k.keys[id] = r
	if "" == k.active && keystore.KeyTypeSigning == typ {
		k.active = id
	}

	return keystore.Key{ID: id, Type: typ, Group: group, PublicKey: publicKey}, nil
}

// SetActive - designate id as the identity Sign operates under
func (k *Keystore) SetActive(id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, ok := k.keys[id]
	if !ok || keystore.KeyTypeSigning != r.typ {
		return fault.ErrNotFoundIdentity
	}
	k.active = id
	return nil
}

// Sign - sign message under the active signing identity
func (k *Keystore) Sign(message []byte) (keystore.Signature, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	r, ok := k.keys[k.active]
	if !ok {
		return nil, fault.ErrNotFoundIdentity
	}
	return entry.Signature(ed25519.Sign(r.signingPriv, message)), nil
}

// Verify - check a signature against an arbitrary claimed public key;
// does not require the key to be held by this keystore
func (k *Keystore) Verify(signature keystore.Signature, publicKey []byte, message []byte) bool {
	if ed25519.PublicKeySize != len(publicKey) {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, []byte(signature))
}

// BoxKeyPair - the X25519 key pair stored under id, for use as
// entry.CreateOptions.SenderBoxPublicKey/SenderBoxPrivateKey
func (k *Keystore) BoxKeyPair(id string) (pub, priv *[32]byte, ok bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, exists := k.keys[id]
	if !exists || keystore.KeyTypeBox != r.typ {
		return nil, nil, false
	}
	return r.boxPub, r.boxPriv, true
}

// SigningPublicKey - the public key bytes stored under id
func (k *Keystore) SigningPublicKey(id string) ([]byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, exists := k.keys[id]
	if !exists || keystore.KeyTypeSigning != r.typ {
		return nil, false
	}
	return []byte(r.signingPub), true
}
