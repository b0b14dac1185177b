// Package keyschedule derives the two independent keys every archive
// operation needs from a single password and salt: one for file
// payloads and the header HMAC, one for entry metadata.
package keyschedule

import (
	"errors"

	"github.com/hambosto/seclume/internal/primitives"
)

// SaltSize is the archive salt length in bytes.
const SaltSize = 16

// Context labels used to domain-separate the two derived keys. These are
// part of the on-disk format's implicit contract and must never change.
const (
	FileContext = "file encryption"
	MetaContext = "metadata encryption"
)

var ErrEmptyPassword = errors.New("keyschedule: password cannot be empty")

// Keys holds the two keys derived for one archive operation. Both are
// held in SecureBytes wrappers and must be released with Close when the
// operation completes, on every exit path.
type Keys struct {
	FileKey *primitives.SecureBytes
	MetaKey *primitives.SecureBytes
}

// Close zeroes both keys. Safe to call multiple times and on a nil receiver.
func (k *Keys) Close() {
	if k == nil {
		return
	}
	k.FileKey.Close()
	k.MetaKey.Close()
}

// GenerateSalt returns a fresh CSPRNG salt of SaltSize bytes.
func GenerateSalt() ([]byte, error) {
	return primitives.RandomBytes(SaltSize)
}

// Derive computes the file key and meta key from password and salt.
// The two keys are distinct byte-for-byte except with negligible
// probability, because they are derived with different info contexts.
func Derive(password, salt []byte) (*Keys, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	fileKey := primitives.DeriveKeyWithContext(password, salt, FileContext)
	metaKey := primitives.DeriveKeyWithContext(password, salt, MetaContext)

	return &Keys{
		FileKey: primitives.NewSecureBytes(fileKey),
		MetaKey: primitives.NewSecureBytes(metaKey),
	}, nil
}
