package entry

import (
	"github.com/bitmark-inc/peerlog/fault"
)

// Entry - a single signed, optionally-encrypted, content-addressed
// record with parent references and a logical clock
type Entry struct {
	Hash Hash
	Next []Hash
	Refs []Hash

	Clock       Clock
	ClockCipher *Cipher // non-nil when Clock was encrypted for a recipient

	GID         string
	MinReplicas uint32

	Payload          []byte
	PayloadEncrypted bool // true when Payload holds a serialized Cipher's ciphertext

	Identity       []byte // creator's public key bytes, plaintext
	IdentityCipher *Cipher // non-nil when Identity was encrypted for a recipient

	Signatures []Signature
}

// CreateOptions - parameters for Create
type CreateOptions struct {
	Payload     []byte
	Next        []Hash
	Refs        []Hash
	ClockTime   uint64
	Identity    []byte
	GID         string
	MinReplicas uint32
	Signer      Signer

	// Recipient, when non-nil, causes Payload and Identity to be
	// encrypted under the recipient's X25519 public key.
	Recipient           *[32]byte
	SenderBoxPublicKey  *[32]byte
	SenderBoxPrivateKey *[32]byte

	// EncryptClock additionally encrypts the clock; it requires the
	// same sender/recipient key pair as Payload/Identity.
	EncryptClock bool
}

// Create - sign and compute the content hash for a new entry
func Create(opts CreateOptions) (*Entry, error) {

	e := &Entry{
		Next:        opts.Next,
		Refs:        opts.Refs,
		GID:         opts.GID,
		MinReplicas: opts.MinReplicas,
		Clock:       Clock{ID: opts.Identity, Time: opts.ClockTime},
		Identity:    opts.Identity,
		Payload:     opts.Payload,
	}

	if nil != opts.Recipient {
		if nil == opts.SenderBoxPublicKey || nil == opts.SenderBoxPrivateKey {
			return nil, fault.ErrInvalidStructPointer
		}

		payloadCipher, err := Seal(opts.Payload, opts.Recipient, opts.SenderBoxPublicKey, opts.SenderBoxPrivateKey)
		if nil != err {
			return nil, err
		}
		e.Payload = encodeCipher(payloadCipher)
		e.PayloadEncrypted = true

		identityCipher, err := Seal(opts.Identity, opts.Recipient, opts.SenderBoxPublicKey, opts.SenderBoxPrivateKey)
		if nil != err {
			return nil, err
		}
		e.IdentityCipher = identityCipher
		e.Identity = nil

		if opts.EncryptClock {
			clockPlain := append(util64Bytes(opts.ClockTime), opts.Identity...)
			clockCipher, err := Seal(clockPlain, opts.Recipient, opts.SenderBoxPublicKey, opts.SenderBoxPrivateKey)
			if nil != err {
				return nil, err
			}
			e.ClockCipher = clockCipher
			e.Clock = Clock{}
		}
	}

	e.Hash = NewHash(e.CanonicalBytes())

	if nil != opts.Signer {
		sig, err := opts.Signer.Sign(e.CanonicalBytes())
		if nil != err {
			return nil, err
		}
		e.Signatures = append(e.Signatures, sig)
	}

	return e, nil
}

func util64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i += 1 {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b
}

func encodeCipher(c *Cipher) []byte {
	buffer := make([]byte, 0, 32+24+len(c.Ciphertext))
	buffer = append(buffer, c.SenderPublicKey[:]...)
	buffer = append(buffer, c.Nonce[:]...)
	buffer = append(buffer, c.Ciphertext...)
	return buffer
}

func decodeCipher(buffer []byte) (*Cipher, error) {
	if len(buffer) < 32+24 {
		return nil, fault.ErrUndecodable
	}
	c := &Cipher{}
	copy(c.SenderPublicKey[:], buffer[:32])
	copy(c.Nonce[:], buffer[32:56])
	c.Ciphertext = buffer[56:]
	return c, nil
}

// OpenPayload - decrypt an encrypted payload; returns the plaintext
// unchanged when the entry was never encrypted
func (e *Entry) OpenPayload(recipientPrivateKey *[32]byte) ([]byte, error) {
	if !e.PayloadEncrypted {
		return e.Payload, nil
	}
	c, err := decodeCipher(e.Payload)
	if nil != err {
		return nil, err
	}
	return Open(c, recipientPrivateKey)
}

// OpenIdentity - decrypt the creator identity; returns the plaintext
// field unchanged when it was never encrypted
func (e *Entry) OpenIdentity(recipientPrivateKey *[32]byte) ([]byte, error) {
	if nil == e.IdentityCipher {
		return e.Identity, nil
	}
	return Open(e.IdentityCipher, recipientPrivateKey)
}

// Verify - check the signature(s) and structural well-formedness of
// an entry against its claimed plaintext identity (decrypted by the
// caller beforehand when IdentityCipher is set)
func Verify(e *Entry, verifier Verifier, identity []byte) error {

	canonical := e.CanonicalBytes()

	if NewHash(canonical) != e.Hash {
		return fault.ErrHashMismatch
	}

	if 0 == len(e.Signatures) {
		return fault.ErrSignatureInvalid
	}

	for _, sig := range e.Signatures {
		if !verifier.Verify(sig, identity, canonical) {
			return fault.ErrSignatureInvalid
		}
	}

	return nil
}

// Compare - Lamport-ordered comparison with tiebreak on clock id
// bytes, matching Clock.Compare
func Compare(a, b *Entry) int {
	return a.Clock.Compare(b.Clock)
}
