// Package primitives implements the fixed cryptographic building blocks
// the archive format is built from: AES-256-GCM sealing, PBKDF2 key
// derivation, HMAC-SHA256, CSPRNG helpers, and constant-time comparison.
// Seal returns, and Open takes, the nonce and tag separately because the archive
// format stores them in dedicated fixed-size fields rather than
// prepended to the ciphertext.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes (96 bits).
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes (128 bits).
	TagSize = 16
)

var (
	ErrInvalidKeySize = errors.New("primitives: key must be 32 bytes")
	ErrSealFailed     = errors.New("primitives: seal failed")
)

// newAEAD builds an AES-256-GCM instance with the standard 12-byte nonce
// and 16-byte tag.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key with a freshly generated random nonce.
// It returns the nonce, the detached authentication tag, and the
// ciphertext (same length as plaintext). No associated data is bound in;
// the v6 archive format never has and changing that would break the
// on-disk layout.
func Seal(key, plaintext []byte) (nonce, tag, ciphertext []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	if len(sealed) < TagSize {
		return nil, nil, nil, ErrSealFailed
	}

	ciphertext = sealed[:len(sealed)-TagSize]
	tag = sealed[len(sealed)-TagSize:]
	return nonce, tag, ciphertext, nil
}

// Open authenticates and decrypts ciphertext sealed with the given nonce
// and detached tag. Returns codecerr-classified auth failure via the
// caller (Open itself returns the raw GCM error; callers translate it to
// codecerr.ErrAuth, keeping this package free of higher-level policy).
func Open(key, nonce, tag, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrSealFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	return aead.Open(nil, nonce, sealed, nil)
}
