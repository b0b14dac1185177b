package primitives

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is the fixed PBKDF2-HMAC-SHA256 iteration count the
// format mandates: one million.
const PBKDF2Iterations = 1_000_000

// DeriveKeyLength is the output length of every PBKDF2 derivation in the
// key schedule: 32 bytes (AES-256).
const DeriveKeyLength = 32

// DeriveKeyWithContext runs PBKDF2-HMAC-SHA256 over password and salt,
// domain-separated by context. Go's PBKDF2 implementation has no "info"
// parameter the way OpenSSL's KDF API does, so domain separation is
// achieved by folding context into the salt (salt || context) before
// calling PBKDF2 — this is stable, requires no second primitive, and
// yields independent 32-byte outputs for the fixed, small set of contexts
// this format actually uses ("file encryption", "metadata encryption").
func DeriveKeyWithContext(password, salt []byte, context string) []byte {
	saltedContext := make([]byte, 0, len(salt)+len(context))
	saltedContext = append(saltedContext, salt...)
	saltedContext = append(saltedContext, context...)

	return pbkdf2.Key(password, saltedContext, PBKDF2Iterations, DeriveKeyLength, sha256.New)
}
