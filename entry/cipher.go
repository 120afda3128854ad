package entry

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"github.com/bitmark-inc/peerlog/fault"
)

// Cipher - a field encrypted for a single recipient
//
// sibling of the teacher's secretbox-based seed encryption
// (account/private.go), using nacl/box instead since a Cipher is
// encrypted for one recipient's X25519 public key rather than sealed
// with a locally-held symmetric key.
type Cipher struct {
	SenderPublicKey [32]byte
	Nonce           [24]byte
	Ciphertext      []byte
}

// Seal - encrypt plaintext for recipientPublicKey, identifying the
// sender by senderPublicKey/senderPrivateKey
func Seal(plaintext []byte, recipientPublicKey, senderPublicKey, senderPrivateKey *[32]byte) (*Cipher, error) {

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); nil != err {
		return nil, err
	}

	ciphertext := box.Seal(nil, plaintext, &nonce, recipientPublicKey, senderPrivateKey)

	return &Cipher{
		SenderPublicKey: *senderPublicKey,
		Nonce:           nonce,
		Ciphertext:      ciphertext,
	}, nil
}

// Open - decrypt a Cipher using the recipient's private key
func Open(c *Cipher, recipientPrivateKey *[32]byte) ([]byte, error) {
	plaintext, ok := box.Open(nil, c.Ciphertext, &c.Nonce, &c.SenderPublicKey, recipientPrivateKey)
	if !ok {
		return nil, fault.ErrUndecodable
	}
	return plaintext, nil
}
